package debate

import "time"

func (e *Engine) SetClock(now func() time.Time) { e.now = now }

func (e *Engine) SetCodeGenerator(gen func() string) { e.newCode = gen }
