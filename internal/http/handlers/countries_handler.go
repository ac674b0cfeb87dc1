package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chat-store/internal/domain"
	"github.com/tbourn/go-chat-store/internal/http/middleware"
	"github.com/tbourn/go-chat-store/internal/services"
)

// CountriesResponse lists dial codes for the phone form. Fallback is true
// when the remote directory failed and the built-in list was served.
type CountriesResponse struct {
	Countries []domain.Country `json:"countries"`
	Fallback  bool             `json:"fallback"`
}

// ListCountries godoc
// @ID          listCountries
// @Summary     Country dial codes
// @Description Returns the country directory sorted by name. When the remote directory is unreachable a short built-in list is returned with fallback=true.
// @Tags        Auth
// @Produce     json
// @Success     200  {object}  handlers.CountriesResponse
// @Failure     500  {object}  handlers.ErrorResponse  "No directory available"
// @Router      /countries [get]
func (h *Handlers) ListCountries(c *gin.Context) {
	list, err := h.countries.Countries(c.Request.Context())
	fallback := false
	if err != nil {
		if !errors.Is(err, services.ErrCountriesUnavailable) || len(list) == 0 {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "country directory unavailable")
			return
		}
		middleware.LoggerFrom(c).Warn().Err(err).Msg("serving fallback countries")
		fallback = true
	}
	c.Header("Cache-Control", "public, max-age=3600")
	ok(c, http.StatusOK, CountriesResponse{Countries: list, Fallback: fallback})
}
