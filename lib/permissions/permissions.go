// Package permissions holds the access policies checked before a handler runs
// (view level) and after the target object is loaded (object level).
package permissions

import (
	"net/http"

	"github.com/icco/yamdb/models"
)

// Authored is implemented by objects that have an author.
type Authored interface {
	GetAuthorID() uint
}

// Policy decides whether actor may perform method. actor is nil for anonymous
// requests. Object checks are only consulted once the view check passed.
type Policy interface {
	Allow(method string, actor *models.User) bool
	AllowObject(method string, actor *models.User, obj Authored) bool
}

// IsSafeMethod reports whether method only reads.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isAdmin(actor *models.User) bool {
	return actor != nil && actor.IsAdmin()
}

func isAuthor(actor *models.User, obj Authored) bool {
	return actor != nil && obj != nil && obj.GetAuthorID() == actor.ID
}

type viewOnly struct{}

func (viewOnly) AllowObject(string, *models.User, Authored) bool { return true }

type objectOnly struct{}

func (objectOnly) Allow(string, *models.User) bool { return true }

type authenticated struct{ viewOnly }

func (authenticated) Allow(_ string, actor *models.User) bool {
	return actor != nil
}

type authenticatedOrReadOnly struct{ viewOnly }

func (authenticatedOrReadOnly) Allow(method string, actor *models.User) bool {
	return IsSafeMethod(method) || actor != nil
}

type ownerOrReadOnly struct{ objectOnly }

func (ownerOrReadOnly) AllowObject(method string, actor *models.User, obj Authored) bool {
	return IsSafeMethod(method) || isAuthor(actor, obj)
}

type administratorOnly struct{ viewOnly }

func (administratorOnly) Allow(_ string, actor *models.User) bool {
	return isAdmin(actor)
}

type administratorOrReadOnly struct{ viewOnly }

func (administratorOrReadOnly) Allow(method string, actor *models.User) bool {
	return IsSafeMethod(method) || isAdmin(actor)
}

type ownerAdministratorOrModeratorOrReadOnly struct{ objectOnly }

func (ownerAdministratorOrModeratorOrReadOnly) AllowObject(method string, actor *models.User, obj Authored) bool {
	if IsSafeMethod(method) {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.IsModerator() || isAuthor(actor, obj)
}

var (
	Authenticated                           Policy = authenticated{}
	AuthenticatedOrReadOnly                 Policy = authenticatedOrReadOnly{}
	OwnerOrReadOnly                         Policy = ownerOrReadOnly{}
	AdministratorOnly                       Policy = administratorOnly{}
	AdministratorOrReadOnly                 Policy = administratorOrReadOnly{}
	OwnerAdministratorOrModeratorOrReadOnly Policy = ownerAdministratorOrModeratorOrReadOnly{}
)

// Set is a list of policies that must all allow a request.
type Set []Policy

func (s Set) Allow(method string, actor *models.User) bool {
	for _, p := range s {
		if !p.Allow(method, actor) {
			return false
		}
	}
	return true
}

func (s Set) AllowObject(method string, actor *models.User, obj Authored) bool {
	for _, p := range s {
		if !p.AllowObject(method, actor, obj) {
			return false
		}
	}
	return true
}
