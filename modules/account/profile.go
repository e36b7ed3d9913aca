package account

import (
	"github.com/dmitrymomot/authflow/handler"
	"github.com/dmitrymomot/authflow/modules/internal/web"
	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/session"
)

func (m *Module) me(ctx handler.Context, _ struct{}) handler.Response {
	id, err := m.svc.Profile(ctx, session.FromContext(ctx))
	if err != nil {
		return web.Error(err)
	}
	return handler.JSON(toUser(id))
}

func (m *Module) updateMe(ctx handler.Context, req UpdateProfileRequest) handler.Response {
	id, err := m.svc.UpdateProfile(ctx, session.FromContext(ctx), identity.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return web.Error(err)
	}
	return handler.JSON(toUser(id))
}
