package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/codekids/core/user"
)

type courseApi struct {
	svc *user.Service
}

func registerCourseAPI(g *echo.Group, svc *user.Service) {
	api := courseApi{svc: svc}

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.GET("/:id/teachers", api.queryTeachers)
}

func (api *courseApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Catalog().List())
}

// queryTeachers lists the teachers a student may be assigned to for the course.
func (api *courseApi) queryTeachers(ctx echo.Context) error {
	crs, err := api.svc.Catalog().Get(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	teachers, err := api.svc.TeachersForCourse(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}
