package internal

import (
	"sjsage522/taglikeworker/services/cache"
	"sjsage522/taglikeworker/services/publisher"
)

// ContentID is the opaque token identifying one content item on the site
type ContentID string

// Dependencies holds all service dependencies
type Dependencies struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup releases the services that hold connections
func (d *Dependencies) Cleanup() {
	if d.Publisher != nil {
		d.Publisher.Close()
	}
}
