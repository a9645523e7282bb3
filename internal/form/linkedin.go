package form

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// LinkStatus is display state only. It never gates submission.
type LinkStatus string

const (
	LinkIdle     LinkStatus = "idle"
	LinkChecking LinkStatus = "checking"
	LinkValid    LinkStatus = "valid"
	LinkInvalid  LinkStatus = "invalid"
)

// DefaultLinkDebounce is how long the checker waits after the last edit.
const DefaultLinkDebounce = 800 * time.Millisecond

var linkedinPattern = regexp.MustCompile(`^https?://(www\.)?linkedin\.com/in/[\w-]+/?$`)

func ValidLinkedinURL(url string) bool {
	return linkedinPattern.MatchString(url)
}

// LinkChecker debounces the profile URL format check. Every Update cancels
// the pending check; only the last one can publish a result.
type LinkChecker struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	seq      uint64
	status   LinkStatus
	onChange func(LinkStatus)
}

// onChange is called without the checker's lock held, from the caller of
// Update or from the timer goroutine. It may read the checker or its form.
func NewLinkChecker(delay time.Duration, onChange func(LinkStatus)) *LinkChecker {
	if delay <= 0 {
		delay = DefaultLinkDebounce
	}
	return &LinkChecker{delay: delay, status: LinkIdle, onChange: onChange}
}

func (c *LinkChecker) Update(value string) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	value = strings.TrimSpace(value)
	if value == "" {
		changed := c.setLocked(LinkIdle)
		c.mu.Unlock()
		c.notify(changed, LinkIdle)
		return
	}
	changed := c.setLocked(LinkChecking)
	c.timer = time.AfterFunc(c.delay, func() { c.finish(seq, value) })
	c.mu.Unlock()
	c.notify(changed, LinkChecking)
}

func (c *LinkChecker) finish(seq uint64, value string) {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	result := LinkInvalid
	if ValidLinkedinURL(value) {
		result = LinkValid
	}
	changed := c.setLocked(result)
	c.mu.Unlock()
	c.notify(changed, result)
}

func (c *LinkChecker) Status() LinkStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Stop cancels any pending check.
func (c *LinkChecker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *LinkChecker) setLocked(s LinkStatus) bool {
	if c.status == s {
		return false
	}
	c.status = s
	return true
}

func (c *LinkChecker) notify(changed bool, s LinkStatus) {
	if changed && c.onChange != nil {
		c.onChange(s)
	}
}
