package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillwave/skillwave-backend/api/responses"
	"github.com/skillwave/skillwave-backend/api/validators"
	"github.com/skillwave/skillwave-backend/internal/courses"
	"github.com/skillwave/skillwave-backend/pkg/db/models"
	pkgerrors "github.com/skillwave/skillwave-backend/pkg/errors"
	"github.com/skillwave/skillwave-backend/pkg/logger"
	"github.com/skillwave/skillwave-backend/pkg/pagination"
)

type courseListResponse struct {
	Items  []courseResponse `json:"items"`
	Cursor string           `json:"cursor"`
}

// CoursesList returns the published catalog, newest first, with a
// keyset cursor for the next page.
func CoursesList(repo courses.CourseRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}

		found, err := repo.ListPublished(r.Context(), pagination.LimitWithBuffer(limit), cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list courses"))
			return
		}

		result := courseListResponse{Items: make([]courseResponse, 0, len(found))}
		if len(found) > limit {
			found = found[:limit]
			last := found[len(found)-1]
			result.Cursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: last.CreatedAt,
				ID:        last.ID,
			})
		}
		for _, course := range found {
			result.Items = append(result.Items, newCourseResponse(&course))
		}
		responses.WriteSuccess(w, result)
	}
}

// CourseGet returns a single published course.
func CourseGet(repo courses.CourseRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course repository unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "courseID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid course id"))
			return
		}

		course, err := repo.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "course not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course"))
			return
		}
		if !course.IsPublished {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "course not found"))
			return
		}

		responses.WriteSuccess(w, newCourseResponse(course))
	}
}

type courseResponse struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	InstructorName string    `json:"instructor_name"`
	Price          string    `json:"price"`
	OriginalPrice  *string   `json:"original_price,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func newCourseResponse(course *models.Course) courseResponse {
	view := courseResponse{
		ID:             course.ID,
		Title:          course.Title,
		InstructorName: course.InstructorName,
		Price:          course.Price.StringFixed(2),
		CreatedAt:      course.CreatedAt,
	}
	if course.OriginalPrice != nil {
		original := course.OriginalPrice.StringFixed(2)
		view.OriginalPrice = &original
	}
	return view
}
