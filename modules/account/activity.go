package account

import (
	"net/http"

	"github.com/dmitrymomot/authflow/handler"
	"github.com/dmitrymomot/authflow/modules/internal/web"
	"github.com/dmitrymomot/authflow/svc/account"
)

// anonymousSession issues an anonymous session to a visitor, minting a
// visitor id when the browser has none.
func (m *Module) anonymousSession(ctx handler.Context, _ struct{}) handler.Response {
	res, err := m.svc.StartAnonymous(ctx, web.VisitorID(m.cookies, ctx.Request()))
	if err != nil {
		return web.Error(err)
	}
	w := ctx.ResponseWriter()
	m.startSession(w, res.Session)
	web.SetVisitorID(m.cookies, w, res.Visit.VisitorID)
	return handler.JSON(visitResponse(res.Visit), handler.WithJSONStatus(http.StatusCreated))
}

func (m *Module) markActive(ctx handler.Context, _ struct{}) handler.Response {
	visit, err := m.svc.MarkActive(ctx, web.VisitorID(m.cookies, ctx.Request()))
	if err != nil {
		return web.Error(err)
	}
	web.SetVisitorID(m.cookies, ctx.ResponseWriter(), visit.VisitorID)
	return handler.JSON(visitResponse(visit))
}

func visitResponse(v account.Visit) VisitResponse {
	return VisitResponse{VisitorID: v.VisitorID, LastActive: v.LastActive}
}
