package utils

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/srand/jolt/testrunner/pkg/log"
)

func HttpLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		log.Tracef("%4s %s %v (%v)", c.Request().Method, c.Request().URL, c.Response().Status, time.Since(start).Round(time.Microsecond))
		return err
	}
}

// Returns a new echo instance configured the way all services expect.
func NewEcho() *echo.Echo {
	r := echo.New()
	r.HideBanner = true
	r.HidePort = true
	r.Use(HttpLogger)
	return r
}
