package indexer

// Observer receives best-effort scan progress. Implementations must not
// block; a scan never depends on them.
type Observer interface {
	ScanStarted(total int)
	Progress(done, total int)
	ScanFinished(sum Summary)
}

type nopObserver struct{}

func (nopObserver) ScanStarted(int)      {}
func (nopObserver) Progress(int, int)    {}
func (nopObserver) ScanFinished(Summary) {}

// Observers fans events out to several observers.
type Observers []Observer

func (obs Observers) ScanStarted(total int) {
	for _, o := range obs {
		o.ScanStarted(total)
	}
}

func (obs Observers) Progress(done, total int) {
	for _, o := range obs {
		o.Progress(done, total)
	}
}

func (obs Observers) ScanFinished(sum Summary) {
	for _, o := range obs {
		o.ScanFinished(sum)
	}
}

// ObserverFunc adapts a progress callback; start and finish are ignored.
type ObserverFunc func(done, total int)

func (f ObserverFunc) ScanStarted(int)          {}
func (f ObserverFunc) Progress(done, total int) { f(done, total) }
func (f ObserverFunc) ScanFinished(Summary)     {}
