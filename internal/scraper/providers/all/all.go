// Package all registers every betting provider integration.
package all

import (
	_ "github.com/Vodeneev/betscraper/internal/scraper/providers/bet365"
)
