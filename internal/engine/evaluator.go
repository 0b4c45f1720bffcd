package engine

import "time"

// TriggerWindow is how far into the future a resolved instant may lie and
// still count as due. It must cover one scan interval so an event landing
// between ticks is not missed; the dedup cooldown absorbs the case where two
// consecutive ticks both see the same event inside the window.
const TriggerWindow = time.Minute

// DedupCooldown is how far back the dedup guard looks in the delivery log.
// It must exceed TriggerWindow plus expected dispatch latency.
const DedupCooldown = 2 * time.Minute

// IsDue reports whether a resolved instant has been reached: due exactly when
// it is at or within TriggerWindow in the future of now. Instants already in
// the past are never due; a record whose occurrence slipped past the window
// is missed for that occurrence.
func IsDue(resolved, now time.Time) bool {
	until := resolved.Sub(now)
	return until >= 0 && until <= TriggerWindow
}
