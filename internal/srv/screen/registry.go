package screen

type Registry struct {
	screensavers []Screensaver
}

func NewRegistry(screensavers ...Screensaver) *Registry {
	return &Registry{screensavers: screensavers}
}

func (r *Registry) Add(s Screensaver) {
	r.screensavers = append(r.screensavers, s)
}

// Lookup returns the first screensaver registered with id.
func (r *Registry) Lookup(id string) (Screensaver, bool) {
	for _, s := range r.screensavers {
		if s.Id() == id {
			return s, true
		}
	}
	return nil, false
}

func (r *Registry) Ids() []string {
	ids := make([]string, 0, len(r.screensavers))
	for _, s := range r.screensavers {
		ids = append(ids, s.Id())
	}
	return ids
}
