package identity

import (
	"fmt"
	"net/url"
)

// QRImageURL renders the verification link into a third-party QR image URL.
// The template carries a single %s placeholder for the escaped link.
func QRImageURL(template, link string) string {
	if template == "" || link == "" {
		return ""
	}
	return fmt.Sprintf(template, url.QueryEscape(link))
}
