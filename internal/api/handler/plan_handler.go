package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/provnet/isp-admin/internal/core/ports"
)

type PlanHandler struct {
	planService ports.PlanService
}

func NewPlanHandler(planService ports.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type planRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Description string  `json:"description"`
}

// List returns every service plan.
//
// @Summary      List plans
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Plan
// @Router       /api/v1/plans [get]
func (h *PlanHandler) List(c echo.Context) error {
	plans, err := h.planService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}

// Create adds a new service plan.
//
// @Summary      Create plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      planRequest  true  "Plan details"
// @Success      201   {object}  domain.Plan
// @Router       /api/v1/plans [post]
func (h *PlanHandler) Create(c echo.Context) error {
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	plan, err := h.planService.Create(c.Request().Context(), ports.PlanInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, plan)
}

// Update mutates a service plan. Renames do not cascade to clients.
//
// @Summary      Update plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Plan id"
// @Param        body  body      planRequest  true  "Plan details"
// @Success      200   {object}  domain.Plan
// @Router       /api/v1/plans/{id} [put]
func (h *PlanHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req planRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	plan, err := h.planService.Update(c.Request().Context(), id, ports.PlanInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

// Delete removes a plan unless clients still reference it.
//
// @Summary      Delete plan
// @Tags         plans
// @Security     BearerAuth
// @Param        id  path  int  true  "Plan id"
// @Success      204
// @Router       /api/v1/plans/{id} [delete]
func (h *PlanHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.planService.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
