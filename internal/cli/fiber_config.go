package cli

import "github.com/gofiber/fiber/v3"

// createFiberConfig returns Fiber configuration.
func createFiberConfig(appName string) fiber.Config {
	return fiber.Config{
		AppName: appName,
		// Analysis requests are small JSON documents; reports can be large
		// but flow the other way.
		BodyLimit: 1 << 20,
	}
}
