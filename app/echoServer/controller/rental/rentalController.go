package rental

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"carrental/model"
	rs "carrental/service/rental"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

const dateLayout = "2006-01-02"

// POST /api/rentals
func (h *Controller) Create(c echo.Context) error {
	var req CreateRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
	}

	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Create(c.Request().Context(), uid, req.CarID, start, end)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrCarNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		case rs.ErrNotAvailable:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "car is not available"})
		case rs.ErrBadDates:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be after start_date"})
		default:
			h.Log.Error("rental create", "err", err, "user_id", uid, "car_id", req.CarID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, out)
}

// GET /api/rentals
func (h *Controller) My(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyRentals(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("rental history", "err", err, "user_id", uid)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /api/rentals/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("user_role").(string)

	d, err := h.Svc.Detail(c.Request().Context(), uid, role == "admin", id)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rental not found"})
		case rs.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "unauthorized"})
		default:
			h.Log.Error("rental detail", "err", err, "rental_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, d)
}

// PUT /api/rentals/:id/cancel
func (h *Controller) Cancel(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Cancel(c.Request().Context(), uid, id)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rental not found"})
		case rs.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "unauthorized"})
		case rs.ErrNotCancellable:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "rental cannot be cancelled"})
		default:
			h.Log.Error("rental cancel", "err", err, "rental_id", id, "user_id", uid)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, out)
}

// GET /api/rentals/admin/all
func (h *Controller) AdminList(c echo.Context) error {
	rows, err := h.Svc.AllRentals(c.Request().Context())
	if err != nil {
		h.Log.Error("admin rental list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, rows)
}

// PUT /api/rentals/admin/:id/status
func (h *Controller) AdminStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req UpdateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}

	out, err := h.Svc.SetStatus(c.Request().Context(), id, model.RentalStatus(req.Status))
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrBadStatus:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rental not found"})
		case rs.ErrTerminal:
			return c.JSON(http.StatusConflict, echo.Map{"error": "rental is in a terminal state"})
		default:
			h.Log.Error("rental status update", "err", err, "rental_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, out)
}
