package car

import (
	"log/slog"
	"net/http"
	"strconv"

	"carrental/model"
	carsvc "carrental/service/car"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc carsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /api/cars
func (h *Controller) List(c echo.Context) error {
	cars, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("car list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, cars)
}

// GET /api/cars/available
func (h *Controller) ListAvailable(c echo.Context) error {
	cars, err := h.Svc.ListAvailable(c.Request().Context())
	if err != nil {
		h.Log.Error("available car list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, cars)
}

// GET /api/cars/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	car, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		switch carsvc.Code(err) {
		case carsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		default:
			h.Log.Error("car detail", "err", err, "car_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, car)
}

// POST /api/cars (admin)
func (h *Controller) Create(c echo.Context) error {
	var req CreateCarReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}

	car := &model.Car{
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		DailyRate:    req.DailyRate,
		ImageURL:     req.ImageURL,
	}
	if err := h.Svc.Create(c.Request().Context(), car); err != nil {
		switch carsvc.Code(err) {
		case carsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car fields"})
		default:
			h.Log.Error("car create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, car)
}

// PUT /api/cars/:id (admin)
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req UpdateCarReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	car, err := h.Svc.Update(c.Request().Context(), id, carsvc.Patch{
		Make:      req.Make,
		Model:     req.Model,
		Year:      req.Year,
		DailyRate: req.DailyRate,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		switch carsvc.Code(err) {
		case carsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		case carsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car fields"})
		default:
			h.Log.Error("car update", "err", err, "car_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, car)
}

// DELETE /api/cars/:id (admin)
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		switch carsvc.Code(err) {
		case carsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		default:
			h.Log.Error("car delete", "err", err, "car_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
