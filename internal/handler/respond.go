package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// response is the JSON envelope every endpoint returns.  Count is set on
// list responses, Data on anything that carries a payload.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondData(c echo.Context, status int, data any) error {
	return c.JSON(status, response{Success: true, Data: data})
}

func respondMsg(c echo.Context, status int, msg string, data any) error {
	return c.JSON(status, response{Success: true, Message: msg, Data: data})
}

func respondList(c echo.Context, status int, count int, data any) error {
	return c.JSON(status, response{Success: true, Count: &count, Data: data})
}

func respondErr(c echo.Context, status int, msg string) error {
	return c.JSON(status, response{Success: false, Message: msg})
}

// getUserID extracts the acting user's ObjectID from the echo context,
// where the JWT middleware stored it as a hex string.
func getUserID(c echo.Context) (primitive.ObjectID, error) {
	s, ok := c.Get("user_id").(string)
	if !ok || s == "" {
		return primitive.NilObjectID, errors.New("missing user_id in context")
	}
	return primitive.ObjectIDFromHex(s)
}

// parseObjectID parses a path or body id, mapping garbage to an error the
// callers translate into a 400.
func parseObjectID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}
