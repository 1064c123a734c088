package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"notas/internal/auth"
	apperrors "notas/internal/errors"
	"notas/internal/service"
)

// NoteHandler handles the /notas endpoints.
type NoteHandler struct {
	noteService service.NoteService
}

// NewNoteHandler creates a new nota handler.
func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// NoteRequest is the body accepted by store and update. Owner and image
// path are not part of it and are ignored when sent.
type NoteRequest = service.NoteInput

// Index godoc
// @Summary List the caller's notas
// @Tags notas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Note
// @Failure 401 {object} errors.ErrorResponse
// @Router /notas [get]
func (h *NoteHandler) Index(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	notes, err := h.noteService.List(c.Request().Context(), caller)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, notes)
}

// Store godoc
// @Summary Create a nota
// @Tags notas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body NoteRequest true "Nota data, image as base64"
// @Success 201 {object} model.Note
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notas [post]
func (h *NoteHandler) Store(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	note, err := h.noteService.Create(c.Request().Context(), caller, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, note)
}

// Show godoc
// @Summary Get a nota
// @Tags notas
// @Produce json
// @Security BearerAuth
// @Param id path int true "Nota ID"
// @Success 200 {object} model.Note
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notas/{id} [get]
func (h *NoteHandler) Show(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}

	note, err := h.noteService.Get(c.Request().Context(), caller, id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, note)
}

// Update godoc
// @Summary Update a nota
// @Tags notas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Nota ID"
// @Param request body NoteRequest true "Nota data, image as base64"
// @Success 200 {object} model.Note
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /notas/{id} [put]
func (h *NoteHandler) Update(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	note, err := h.noteService.Update(c.Request().Context(), caller, id, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, note)
}

// Destroy godoc
// @Summary Delete a nota
// @Tags notas
// @Security BearerAuth
// @Param id path int true "Nota ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notas/{id} [delete]
func (h *NoteHandler) Destroy(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}

	if err := h.noteService.Delete(c.Request().Context(), caller, id); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func callerFrom(c echo.Context) (auth.Identity, error) {
	caller, ok := auth.IdentityFrom(c)
	if !ok {
		return auth.Identity{}, httpError(apperrors.ErrUnauthenticated)
	}
	return caller, nil
}

// noteID parses the :id path parameter. Anything that is not a positive
// integer cannot name a nota.
func noteID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, httpError(apperrors.ErrNoteNotFound)
	}
	return uint(id), nil
}
