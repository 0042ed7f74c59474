package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

func QueryInt(ctx echo.Context, name string, fallback int) int {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func QueryString(ctx echo.Context, name, fallback string) string {
	if raw := ctx.QueryParam(name); raw != "" {
		return raw
	}
	return fallback
}

func QueryBool(ctx echo.Context, name string, fallback bool) bool {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
