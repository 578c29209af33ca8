package ml

import (
	"sync"

	"github.com/aavahealth/migraine-api/schema"
)

// ModelCache keeps deserialized model artifacts in memory so the scoring
// path does not hit the store on every request. Retraining replaces the
// cached entry through Put.
type ModelCache struct {
	sync.RWMutex
	models map[string]schema.ModelArtifact
}

func NewModelCache() *ModelCache {
	return &ModelCache{
		models: map[string]schema.ModelArtifact{},
	}
}

func cacheKey(owner string, stream schema.Stream) string {
	return owner + "/" + string(stream)
}

func (c *ModelCache) Get(owner string, stream schema.Stream) (schema.ModelArtifact, bool) {
	c.RLock()
	defer c.RUnlock()
	artifact, ok := c.models[cacheKey(owner, stream)]
	return artifact, ok
}

func (c *ModelCache) Put(artifact schema.ModelArtifact) {
	c.Lock()
	defer c.Unlock()
	c.models[cacheKey(artifact.Owner, artifact.Stream)] = artifact
}
