package sim

// SceneCaster fans a frame out to multiple renderers.
type SceneCaster struct {
	renderers []SceneRenderer
}

// AddRenderer subscribes a renderer.
func (c *SceneCaster) AddRenderer(r SceneRenderer) {
	c.renderers = append(c.renderers, r)
}

// Render implements SceneRenderer.
func (c *SceneCaster) Render(s Scene) {
	for _, r := range c.renderers {
		r.Render(s)
	}
}

// Len returns the number of subscribed renderers.
func (c *SceneCaster) Len() int {
	return len(c.renderers)
}
