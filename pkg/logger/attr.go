package logger

import (
	"log/slog"
	"strconv"
)

// Error records err under the key "error". Nil errors yield an empty Attr,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errors under "errors".
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(len(as)), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// OwnerID records the authenticated owner under "owner_id".
func OwnerID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("owner_id", id)
}

// InternID records the intern record identifier under "intern_id".
func InternID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("intern_id", id)
}

// LetterKind records the letter kind (offer, completion) under "letter_kind".
func LetterKind(kind string) slog.Attr {
	return slog.String("letter_kind", kind)
}

// Channel records the dispatch channel name under "channel".
func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

// MessageID records a provider message id under "message_id".
func MessageID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("message_id", id)
}

// RequestID records the request identifier under "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}
