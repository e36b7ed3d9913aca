package account

import (
	"github.com/dmitrymomot/authflow/handler"
	"github.com/dmitrymomot/authflow/modules/internal/web"
)

func (m *Module) requestPasswordReset(ctx handler.Context, req ResetRequest) handler.Response {
	if err := m.svc.RequestPasswordReset(ctx, req.Email); err != nil {
		return web.Error(err)
	}
	return handler.Empty()
}

func (m *Module) confirmPasswordReset(ctx handler.Context, req ResetConfirmRequest) handler.Response {
	if err := m.svc.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return web.Error(err)
	}
	return handler.Empty()
}
