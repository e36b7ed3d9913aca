package account

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/authflow/handler"
	"github.com/dmitrymomot/authflow/modules/internal/web"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/session"
	"github.com/dmitrymomot/authflow/svc/account"
)

func (m *Module) register(ctx handler.Context, req RegisterRequest) handler.Response {
	id, err := m.svc.Register(ctx, account.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		RedirectTo: req.RedirectTo,
	})
	sent := true
	if errors.Is(err, account.ErrDeliveryFailed) && id != nil {
		m.logger.WarnContext(ctx, "account created without confirmation email",
			logger.UserID(id.ID),
			logger.Error(err),
		)
		sent = false
	} else if err != nil {
		return web.Error(err)
	}

	return handler.JSON(RegisterResponse{User: toUser(id), ConfirmationSent: sent},
		handler.WithJSONStatus(http.StatusCreated))
}

func (m *Module) confirmEmail(ctx handler.Context, req ConfirmEmailRequest) handler.Response {
	res, err := m.svc.ConfirmEmail(ctx, req.Token)
	if err != nil {
		return web.Error(err)
	}
	return handler.JSON(ConfirmEmailResponse{Email: res.Email, AlreadyConfirmed: res.AlreadyConfirmed})
}

func (m *Module) resendConfirmation(ctx handler.Context, req ResendRequest) handler.Response {
	if err := m.svc.ResendConfirmation(ctx, req.Email, req.RedirectTo); err != nil {
		return web.Error(err)
	}
	return handler.Empty()
}

func (m *Module) login(ctx handler.Context, req LoginRequest) handler.Response {
	r := ctx.Request()
	res, err := m.svc.Login(ctx, account.LoginInput{
		Email:           req.Email,
		Password:        req.Password,
		AnonymousHandle: m.handle(r, session.RoleAnonymous),
		VisitorID:       web.VisitorID(m.cookies, r),
	})
	if err != nil {
		return web.Error(err)
	}
	return m.loggedIn(ctx.ResponseWriter(), res)
}

func (m *Module) googleLogin(ctx handler.Context, req GoogleLoginRequest) handler.Response {
	res, err := m.svc.GoogleLogin(ctx, req.IDToken, m.federatedInput(ctx.Request(), req.State))
	if err != nil {
		return web.Error(err)
	}
	return m.loggedIn(ctx.ResponseWriter(), res)
}

func (m *Module) facebookLogin(ctx handler.Context, req FacebookLoginRequest) handler.Response {
	res, err := m.svc.FacebookLogin(ctx, req.FacebookUser, m.federatedInput(ctx.Request(), req.State))
	if err != nil {
		return web.Error(err)
	}
	return m.loggedIn(ctx.ResponseWriter(), res)
}

func (m *Module) federatedInput(r *http.Request, state string) account.FederatedLoginInput {
	return account.FederatedLoginInput{
		State:           state,
		AnonymousHandle: m.handle(r, session.RoleAnonymous),
		VisitorID:       web.VisitorID(m.cookies, r),
	}
}

func (m *Module) loggedIn(w http.ResponseWriter, res *account.LoginResult) handler.Response {
	m.startSession(w, res.Session)
	web.SetVisitorID(m.cookies, w, res.VisitorID)

	redirect := res.RedirectTo
	if redirect == "" {
		redirect = m.svc.Config().DefaultRedirect
	}
	return handler.JSON(LoginResponse{
		User:         toUser(res.Identity),
		SessionToken: res.Session.Handle,
		ExpiresAt:    res.Session.ExpiresAt,
		RedirectTo:   redirect,
		Created:      res.Created,
	})
}

func (m *Module) logout(ctx handler.Context, _ struct{}) handler.Response {
	tr := m.transports[session.RoleCustomer]
	if err := m.svc.EndSession(ctx, m.handle(ctx.Request(), session.RoleCustomer)); err != nil {
		return web.Error(err)
	}
	tr.ClearHandle(ctx.ResponseWriter())
	return handler.Empty()
}

func (m *Module) refreshSession(ctx handler.Context, _ struct{}) handler.Response {
	sess, err := m.svc.RefreshSession(ctx, m.handle(ctx.Request(), session.RoleCustomer), session.RoleCustomer)
	if err != nil {
		return web.Error(err)
	}
	m.startSession(ctx.ResponseWriter(), sess)
	return handler.JSON(SessionResponse{ExpiresAt: sess.ExpiresAt})
}
