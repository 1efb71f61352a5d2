package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "campushub_flash"

type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// AddFlash queues a notice for the next rendered page.
func AddFlash(c *gin.Context, category, message string) {
	flashes := append(readFlashes(c), Flash{Category: category, Message: message})
	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	value := base64.RawURLEncoding.EncodeToString(raw)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, value, 0, "/", "", false, true)
	// later reads in the same request see the queued notice
	c.Set(flashCookie, flashes)
}

// PopFlashes returns the queued notices and clears them.
func PopFlashes(c *gin.Context) []Flash {
	flashes := readFlashes(c)
	if len(flashes) > 0 {
		c.SetCookie(flashCookie, "", -1, "/", "", false, true)
		c.Set(flashCookie, []Flash(nil))
	}
	return flashes
}

// Redirect queues a notice and sends the caller to location.
func Redirect(c *gin.Context, location, category, message string) {
	AddFlash(c, category, message)
	c.Redirect(http.StatusFound, location)
}

func readFlashes(c *gin.Context) []Flash {
	if v, ok := c.Get(flashCookie); ok {
		flashes, _ := v.([]Flash)
		return flashes
	}

	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
