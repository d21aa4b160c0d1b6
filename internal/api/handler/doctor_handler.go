package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
	"github.com/doctorsportal/appointments-system/internal/core/service"
)

// DoctorHandler handles HTTP requests for the doctor directory.
type DoctorHandler struct {
	service ports.DoctorService
}

func NewDoctorHandler(service ports.DoctorService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

type addDoctorResponse struct {
	InsertedID string `json:"insertedId"`
}

// List handles GET /doctors.
//
// @Summary      List doctors
// @Tags         doctors
// @Produce      json
// @Success      200  {array}  domain.Doctor
// @Router       /doctors [get]
func (h *DoctorHandler) List(c echo.Context) error {
	doctors, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doctors)
}

// Add handles POST /doctors (multipart: name, email, image). Admin only.
//
// @Summary      Add a doctor
// @Tags         doctors
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        name   formData  string  true  "Doctor name"
// @Param        email  formData  string  true  "Doctor email"
// @Param        image  formData  file    true  "Picture, at most 5 MiB"
// @Success      201    {object}  addDoctorResponse
// @Failure      400    {object}  messageResponse
// @Failure      403    {object}  messageResponse
// @Router       /doctors [post]
func (h *DoctorHandler) Add(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image is required")
	}
	if fh.Size > service.MaxDoctorImageBytes {
		return domain.ErrInvalidImage
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable image")
	}
	defer f.Close()

	image, err := io.ReadAll(io.LimitReader(f, service.MaxDoctorImageBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable image")
	}

	id, err := h.service.Add(c.Request().Context(), ports.AddDoctorInput{
		Name:        c.FormValue("name"),
		Email:       c.FormValue("email"),
		Image:       image,
		ContentType: fh.Header.Get(echo.HeaderContentType),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, addDoctorResponse{InsertedID: id})
}
