package handlers

import (
	"log/slog"

	"github.com/icco/yamdb/lib/auth"
	"github.com/icco/yamdb/lib/mail"
	"github.com/icco/yamdb/lib/store"
)

// API holds the collaborators shared by every handler.
type API struct {
	store       *store.Store
	issuer      *auth.Issuer
	mailer      mail.Sender
	mailSubject string
	logger      *slog.Logger
}

func NewAPI(st *store.Store, issuer *auth.Issuer, mailer mail.Sender, mailSubject string, logger *slog.Logger) *API {
	return &API{
		store:       st,
		issuer:      issuer,
		mailer:      mailer,
		mailSubject: mailSubject,
		logger:      logger,
	}
}
