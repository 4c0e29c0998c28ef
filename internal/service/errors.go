package service

import (
	"github.com/supporthub/support-dashboard/internal/repository"
	apperrors "github.com/supporthub/support-dashboard/pkg/util/errorutil"
)

// notFoundAs names the missing resource when err is a no-rows lookup failure.
func notFoundAs(err error, resource string, id string) error {
	if repository.IsNotFound(err) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}
