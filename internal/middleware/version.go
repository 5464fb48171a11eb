package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// APIVersion is the version reported in the X-Api-Version response header.
const APIVersion = "1.0.0"

// VersionMiddleware parses the X-Api-Version header, stores the requested
// version in context and echoes the served version on the response.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := normalizeVersion(c.Get("X-Api-Version", APIVersion))

		// Store version in context
		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", APIVersion)

		return c.Next()
	}
}

// normalizeVersion expands aliases such as "1" and "v1.0" to "1.0.0".
func normalizeVersion(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return APIVersion
	}
	switch strings.Count(v, ".") {
	case 0:
		return v + ".0.0"
	case 1:
		return v + ".0"
	}
	return v
}
