package tasks

import "time"

// Update is a lifecycle event for one executed intent.
//
// Sent to the channel given in [EngineOpts.Updates] so a UI can show a spinner or an error line.
type Update struct {
	Phase   Phase         // Lifecycle phase
	ID      string        // Execution id, shared by every update of one intent
	Intent  string        // Intent name
	Elapsed time.Duration // Time since the intent started; zero for [Started]
	Err     error         // Failure, set for [Failed]
}

// Intent lifecycle phase
type Phase int

const (
	Started Phase = iota
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Started:
		return "started"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

func startedUpdate(id, name string) Update {
	return Update{Phase: Started, ID: id, Intent: name}
}

func finishedUpdate(id, name string, started time.Time, err error) Update {
	u := Update{Phase: Succeeded, ID: id, Intent: name, Elapsed: time.Since(started), Err: err}
	if err != nil {
		u.Phase = Failed
	}
	return u
}

// notify sends without blocking; a slow reader drops updates.
func (e *Engine) notify(u Update) {
	if e.updates == nil {
		return
	}
	select {
	case e.updates <- u:
	default:
	}
}
