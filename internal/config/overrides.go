package config

// Overrides carries values set on the command line. Nil fields leave the
// loaded value alone.
type Overrides struct {
	BaseURL    *string
	BoxID      *string
	RecordID   *string
	Offline    *bool
	Cache      *string
	CacheDir   *string
	DebounceMS *int
	LogLevel   *string
	Theme      *string
}

// Apply layers o on top of c and re-validates.
func (c *Config) Apply(o Overrides) error {
	setString(&c.Remote.BaseURL, o.BaseURL)
	setString(&c.Remote.BoxID, o.BoxID)
	setString(&c.Remote.RecordID, o.RecordID)
	if o.Offline != nil {
		c.Remote.Offline = *o.Offline
	}
	setString(&c.Cache.Backend, o.Cache)
	if o.CacheDir != nil {
		c.Cache.Dir = expandPath(*o.CacheDir)
		if c.logFileDerived {
			c.Log.File = defaultLogFile(c.Cache.Dir)
		}
	}
	if o.DebounceMS != nil {
		c.Save.DebounceMS = *o.DebounceMS
	}
	setString(&c.Log.Level, o.LogLevel)
	setString(&c.UI.Theme, o.Theme)
	return c.Validate()
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
