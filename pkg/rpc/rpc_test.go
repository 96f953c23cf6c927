package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

func TestCodecRegistered(t *testing.T) {
	codec := encoding.GetCodec(CodecName)
	require.NotNil(t, codec)
	assert.Equal(t, CodecName, codec.Name())
}

func TestCodecRoundTrip(t *testing.T) {
	in := &service.QueryRequest{
		ConnectionName: "sales",
		Question:       "revenue by region",
		ChartHint:      "bar",
	}

	data, err := jsonCodec{}.Marshal(in)
	require.NoError(t, err)

	out := &service.QueryRequest{}
	require.NoError(t, jsonCodec{}.Unmarshal(data, out))

	assert.Equal(t, in, out)
}

func TestStatusFromError(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		expect codes.Code
	}{
		{
			name:   "not exist",
			err:    errs.E(errs.NotExist, errs.Str("no such connection")),
			expect: codes.NotFound,
		},
		{
			name:   "already exists",
			err:    errs.E(errs.Exist, errs.Str("duplicate name")),
			expect: codes.AlreadyExists,
		},
		{
			name:   "invalid request",
			err:    errs.E(errs.InvalidRequest, errs.Str("bad input")),
			expect: codes.InvalidArgument,
		},
		{
			name:   "validation",
			err:    errs.E(errs.Validation, errs.Str("bad input")),
			expect: codes.InvalidArgument,
		},
		{
			name:   "unauthenticated",
			err:    errs.E(errs.Unauthenticated, errs.Str("no token")),
			expect: codes.Unauthenticated,
		},
		{
			name:   "unauthorized",
			err:    errs.E(errs.Unauthorized, errs.Str("not allowed")),
			expect: codes.PermissionDenied,
		},
		{
			name:   "unavailable",
			err:    errs.E(errs.Unavailable, errs.Str("llm down")),
			expect: codes.Unavailable,
		},
		{
			name:   "database maps to internal",
			err:    errs.E(errs.Database, errs.Str("query failed")),
			expect: codes.Internal,
		},
		{
			name:   "wrapped kind is preserved",
			err:    errs.E(errs.Op("outer"), errs.E(errs.Op("inner"), errs.NotExist, errs.Str("gone"))),
			expect: codes.NotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st, ok := status.FromError(statusFromError(tc.err))
			require.True(t, ok)
			assert.Equal(t, tc.expect, st.Code())
		})
	}
}
