package grpcstore

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/revstore/cidutil"
	"xdao.co/revstore/codec"
	"xdao.co/revstore/ident"
	"xdao.co/revstore/storage"
)

// Server exposes a storage.Store over the ElementStore gRPC service.
type Server struct {
	UnimplementedElementStoreServer
	Store  storage.Store
	Logger hclog.Logger
}

func (s *Server) log() hclog.Logger {
	if s.Logger == nil {
		return hclog.NewNullLogger()
	}
	return s.Logger
}

func (s *Server) Put(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	_ = ctx
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	b := in.GetValue()
	e, err := codec.DecodeElement(b)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.Store.Put(e); err != nil {
		s.log().Warn("put rejected", "id", e.ID, "error", err)
		return nil, mapErr(err)
	}
	s.log().Debug("put", "id", e.ID, "kind", e.Kind(), "bytes", len(b))
	return wrapperspb.String(cidutil.DigestString(b)), nil
}

func (s *Server) Get(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	id, err := ident.ParseExGuid(in.GetValue())
	if err != nil || id.IsNull() {
		return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidID.Error())
	}
	e, err := s.Store.Get(id)
	if err != nil {
		return nil, mapErr(err)
	}
	b, err := codec.EncodeElement(e)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) Has(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	_ = ctx
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	id, err := ident.ParseExGuid(in.GetValue())
	if err != nil || id.IsNull() {
		return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidID.Error())
	}
	return wrapperspb.Bool(s.Store.Has(id)), nil
}
