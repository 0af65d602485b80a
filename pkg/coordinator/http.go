package coordinator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/srand/jolt/testrunner/pkg/log"
	"github.com/srand/jolt/testrunner/pkg/protocol"
	"github.com/srand/jolt/testrunner/pkg/utils"
)

type Error struct {
	Message string `json:"message"`
}

func newError(c echo.Context, err error) error {
	status := utils.HttpStatus(err)
	if status == http.StatusInternalServerError {
		log.Error(c.Request().URL, err)
	} else {
		log.Debug(c.Request().URL, err)
	}
	return c.JSON(status, &Error{Message: err.Error()})
}

// Writes v as JSON, gzip compressed if the client accepts it.
func writeJSON(c echo.Context, status int, v interface{}) error {
	if !strings.Contains(c.Request().Header.Get(echo.HeaderAcceptEncoding), "gzip") {
		return c.JSON(status, v)
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	header.Set(echo.HeaderContentEncoding, "gzip")
	header.Add(echo.HeaderVary, echo.HeaderAcceptEncoding)
	c.Response().WriteHeader(status)

	gz := gzip.NewWriter(c.Response())
	if err := json.NewEncoder(gz).Encode(v); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// NewHttpHandler installs the coordinator endpoints on r. Metrics are
// served from gatherer when it is not nil.
func NewHttpHandler(coordinator *Coordinator, r *echo.Echo, gatherer prometheus.Gatherer) {
	r.GET(protocol.TestsPath, func(c echo.Context) error {
		assignment, err := coordinator.Next(c.QueryParam(protocol.RunnerParam), c.QueryParam(protocol.RevisionParam))
		if err != nil {
			return newError(c, err)
		}
		return writeJSON(c, http.StatusOK, assignment)
	})

	r.POST(protocol.ResultsPath, func(c echo.Context) error {
		results := []protocol.TestResult{}
		if err := json.NewDecoder(c.Request().Body).Decode(&results); err != nil {
			return newError(c, fmt.Errorf("%w: %v", utils.ErrBadRequest, err))
		}

		if err := coordinator.Report(c.QueryParam(protocol.RunnerParam), results); err != nil {
			return newError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})

	r.GET("/status", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"id":         coordinator.Id(),
			"statistics": coordinator.Statistics(),
			"runners":    coordinator.Runners(),
			"done":       coordinator.Done(),
		})
	})

	if gatherer != nil {
		r.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
