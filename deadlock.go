package tneo

// DeadlockInfo describes one deadlock notification: Active is true the
// instant a cycle is first detected (and again on any repeated detection
// of the same cycle, subject to rate limiting), and false exactly once,
// when any participant exits its wait and the cycle clears.
type DeadlockInfo struct {
	Tasks  []*Task
	Mutex  *Mutex
	Active bool
}

// reportDeadlock is called from mutexBoostChain when the boost walk
// revisits a task, indicating a cycle. Detection is purely observational
// (spec section 4.7): it never unwinds the cycle, only records every task
// on it (plus h) and notifies the application callback.
func (k *Kernel) reportDeadlock(h, cur *Task, m *Mutex) {
	if k.cfg.DisableDeadlockDetection {
		return
	}
	if !k.deadlockActive {
		k.deadlockActive = true
		k.state |= sysStateDeadlock
		k.deadlockParticipants = make(map[*Task]bool, 4)
	}
	// cur was revisited, so it lies on the cycle: follow the chain of
	// blocked holders from cur until it closes, recording each task.
	for t := cur; !k.deadlockParticipants[t]; {
		k.deadlockParticipants[t] = true
		if t.state&stateWait == 0 || t.waitReason != WaitReasonMutex || t.blockedMutex == nil || t.blockedMutex.holder == nil {
			break
		}
		t = t.blockedMutex.holder
	}
	k.deadlockParticipants[h] = true

	k.notifyDeadlock(DeadlockInfo{
		Tasks:  k.deadlockParticipantsList(),
		Mutex:  m,
		Active: true,
	})
}

// checkDeadlockClear is called from complete() whenever a mutex wait
// ends, for any reason. If t was a participant in the active deadlock,
// the cycle is now broken (one of the participants left the wait), so the
// detector clears and notifies once, unconditionally (the clear event is
// a one-time transition, not a storm, so it bypasses rate limiting).
func (k *Kernel) checkDeadlockClear(t *Task) {
	if !k.deadlockActive || !k.deadlockParticipants[t] {
		return
	}
	tasks := k.deadlockParticipantsList()
	k.deadlockActive = false
	k.state &^= sysStateDeadlock
	k.deadlockParticipants = nil
	k.notifyDeadlockRaw(DeadlockInfo{Tasks: tasks, Active: false})
}

func (k *Kernel) deadlockParticipantsList() []*Task {
	tasks := make([]*Task, 0, len(k.deadlockParticipants))
	for t := range k.deadlockParticipants {
		tasks = append(tasks, t)
	}
	return tasks
}

// notifyDeadlock throttles repeated "active" notifications through the
// diagnostic rate limiter (internal/diagrate), so a busy cycle being
// repeatedly re-detected across many ticks can't flood the configured
// callback or log sink.
func (k *Kernel) notifyDeadlock(info DeadlockInfo) {
	if k.limiter != nil {
		if _, allow := k.limiter.Allow(); !allow {
			return
		}
	}
	k.notifyDeadlockRaw(info)
}

func (k *Kernel) notifyDeadlockRaw(info DeadlockInfo) {
	k.log.Warn().Bool("active", info.Active).Int("participants", len(info.Tasks)).Msg("deadlock")
	if k.cfg.OnDeadlock != nil {
		k.cfg.OnDeadlock(info)
	}
}
