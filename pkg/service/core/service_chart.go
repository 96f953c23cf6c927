package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/chart"
	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

var _ service.ChartService = &chartService{}

type chartService struct {
	llmService service.LLMService
	renderer   *chart.Renderer
	log        zerolog.Logger
}

// NewChartService builds the chart service. llmService may be nil, in
// which case suggestions come from shape inference alone.
func NewChartService(llmService service.LLMService, renderer *chart.Renderer, log zerolog.Logger) *chartService {
	return &chartService{
		llmService: llmService,
		renderer:   renderer,
		log:        log,
	}
}

// Suggest infers a chart spec from the result shape. A user hint wins
// outright, then an llm recommendation, then the inference rules.
func (s *chartService) Suggest(ctx context.Context, result *service.QueryResult, question, hint string) (*service.ChartSpec, error) {
	const op errs.Op = "chartService.Suggest"

	if result == nil {
		return nil, errs.E(op, errs.InvalidRequest, errs.Str("result is required"))
	}

	spec := chart.Infer(result)

	if hint != "" && isChartType(hint) {
		spec.Type = hint
		return spec, nil
	}

	if s.llmService != nil {
		recommended, err := s.llmService.RecommendChart(ctx, result, question, hint, "")
		if err != nil {
			s.log.Warn().Err(err).Msg("chart recommendation failed, using inference")
		} else if recommended != "" {
			spec.Type = recommended
		}
	}

	return spec, nil
}

func (s *chartService) Render(result *service.QueryResult, spec *service.ChartSpec) ([]byte, error) {
	const op errs.Op = "chartService.Render"

	png, err := s.renderer.Render(result, spec)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return png, nil
}

func isChartType(t string) bool {
	switch t {
	case service.ChartTypeBar, service.ChartTypeLine, service.ChartTypePie,
		service.ChartTypeScatter, service.ChartTypeHistogram, service.ChartTypeTable:
		return true
	}

	return false
}
