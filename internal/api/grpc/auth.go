package grpc

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"vehicle-rental-backend/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (h *AuthHandler) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	name, email, phone, password := f.str("name"), f.str("email"), f.str("phone"), f.str("password")
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}

	user, err := h.authSvc.Register(ctx, name, email, phone, password)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"user": MapDomainUserToProto(user)})
}

func (h *AuthHandler) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	email, password := f.str("email"), f.str("password")
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}

	user, access, expiresAt, err := h.authSvc.Login(ctx, email, password)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{
		"access_token": access,
		"expires_at":   expiresAt.UTC().Format(time.RFC3339),
		"user":         MapDomainUserToProto(user),
	})
}
