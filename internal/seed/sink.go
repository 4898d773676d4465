package seed

import (
	"seedvault/internal/prefstore"
	"time"
)

// fieldSink persists the metadata fields of a seed record. The in-memory
// record and the preference store both implement it; while the seed file
// migration is in flight, metadata writes fan out to both sinks instead of
// branching on the backend in every method.
type fieldSink interface {
	setSignature(v string)
	setMilestone(v int)
	setSeedDate(t time.Time)
	setFetchTime(t time.Time)
	setSessionCountry(v string)
	setPermanentCountry(country, version string)
	clearSeedMeta()
	clearSessionCountry()
	clearPermanentCountry()
}

type recordSink struct {
	rec *record
}

func (r recordSink) setSignature(v string)   { r.rec.signature = v }
func (r recordSink) setMilestone(v int)      { r.rec.milestone = v }
func (r recordSink) setSeedDate(t time.Time) { r.rec.seedDate = t }
func (r recordSink) setFetchTime(t time.Time) {
	r.rec.fetchTime = t
}
func (r recordSink) setSessionCountry(v string) { r.rec.sessionCountry = v }
func (r recordSink) setPermanentCountry(country, version string) {
	r.rec.permanentCountry = country
	r.rec.permanentVersion = version
}

func (r recordSink) clearSeedMeta() {
	r.rec.signature = ""
	r.rec.milestone = 0
	r.rec.seedDate = time.Time{}
	r.rec.fetchTime = time.Time{}
}

func (r recordSink) clearSessionCountry() { r.rec.sessionCountry = "" }
func (r recordSink) clearPermanentCountry() {
	r.rec.permanentCountry = ""
	r.rec.permanentVersion = ""
}

type prefSink struct {
	prefs *prefstore.Store
	keys  FieldKeys
}

// safeShape reports whether this key set uses the safe-seed preference
// shape for the permanent country: a bare country string, against the
// [version, country] list the latest seed uses. A historical asymmetry,
// preserved for compatibility with existing installations.
func (p prefSink) safeShape() bool {
	return p.keys.PermanentCountryVersion == SafeFieldKeys.PermanentCountryVersion
}

func (p prefSink) setSignature(v string)    { p.prefs.SetString(p.keys.Signature, v) }
func (p prefSink) setMilestone(v int)       { p.prefs.SetInt(p.keys.Milestone, v) }
func (p prefSink) setSeedDate(t time.Time)  { p.prefs.SetTime(p.keys.SeedDate, t) }
func (p prefSink) setFetchTime(t time.Time) { p.prefs.SetTime(p.keys.ClientFetchTime, t) }
func (p prefSink) setSessionCountry(v string) {
	p.prefs.SetString(p.keys.SessionCountry, v)
}

func (p prefSink) setPermanentCountry(country, version string) {
	if p.safeShape() {
		p.prefs.SetString(p.keys.PermanentCountryVersion, country)
		return
	}
	p.prefs.SetStringList(p.keys.PermanentCountryVersion, []string{version, country})
}

// permanentCountry reads the compound permanent-country preference back
// into its parts, tolerating malformed shapes.
func (p prefSink) permanentCountry() (country, version string) {
	if p.safeShape() {
		return p.prefs.GetString(p.keys.PermanentCountryVersion), ""
	}
	list := p.prefs.GetStringList(p.keys.PermanentCountryVersion)
	if len(list) == 2 {
		version = list[0]
		country = list[1]
	}
	return country, version
}

func (p prefSink) clearSeedMeta() {
	p.prefs.ClearKey(p.keys.Signature)
	p.prefs.ClearKey(p.keys.Milestone)
	p.prefs.ClearKey(p.keys.SeedDate)
	p.prefs.ClearKey(p.keys.ClientFetchTime)
}

func (p prefSink) clearSessionCountry() { p.prefs.ClearKey(p.keys.SessionCountry) }
func (p prefSink) clearPermanentCountry() {
	p.prefs.ClearKey(p.keys.PermanentCountryVersion)
}
