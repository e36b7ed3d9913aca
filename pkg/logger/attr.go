package logger

import (
	"log/slog"
	"strconv"
	"strings"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups the non-nil errors under "errors"; all-nil yields an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return Group("errors", as...)
}

// Error records err under "error"; nil yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func UserID(id any) slog.Attr {
	return optional("user_id", id)
}

// VisitorID records the per-browser activity identifier.
func VisitorID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("visitor_id", id)
}

func Role(role any) slog.Attr {
	return optional("role", role)
}

func RequestID(id any) slog.Attr {
	return optional("request_id", id)
}

// Email records an address with the local part masked: "a***@example.com".
func Email(email string) slog.Attr {
	if email == "" {
		return slog.Attr{}
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return slog.String("email", "***")
	}
	return slog.String("email", local[:1]+"***@"+domain)
}

func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func optional(key string, v any) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	return slog.Any(key, v)
}
