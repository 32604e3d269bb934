// Package classify reconstructs a structured message forest from the flat,
// loosely-typed log snapshot the agent backend exposes. Classification is
// keyword-driven and best-effort: unexpected text never fails, it falls
// through to the fallback rule.
package classify

import (
	"fmt"
	"strings"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

// Options control classification behavior.
type Options struct {
	// HITL keeps plan-review steps expanded pending user action instead of
	// auto-collapsing them on success.
	HITL bool
}

// stepTag identifies which phase the currently open step belongs to.
// At most one step is open at a time; steps do not nest.
type stepTag string

const (
	tagNone      stepTag = ""
	tagResearch  stepTag = "research"
	tagPlanning  stepTag = "planning"
	tagExecution stepTag = "execution"
)

// Classify turns a full log snapshot into a new message forest. It is a pure
// function of its inputs and rebuilds the forest from scratch every call:
// the snapshot is a replacement, not a diff, so patching the previous tree
// would only invite drift.
//
// prior is the forest from the previous pass; it is consulted only to carry
// over collapse state for steps without a durable preference. prefs maps a
// step's group key to its persisted collapse choice and always wins.
func Classify(logs []models.LogEntry, prior []*models.StructuredMessage, prefs map[string]bool, opts Options) []*models.StructuredMessage {
	b := &builder{opts: opts}
	for _, e := range logs {
		b.classifyEntry(e)
	}
	resolveCollapse(b.messages, prior, prefs)
	return b.messages
}

// builder accumulates the forest during one left-to-right pass.
type builder struct {
	messages []*models.StructuredMessage
	open     *models.StructuredMessage
	openTag  stepTag
	nextID   int
	opts     Options
}

// classifyEntry applies the ordered rule list to one entry. The first
// matching rule wins; order matters because marker texts overlap (a plan
// review message also contains the plain plan-generated text).
func (b *builder) classifyEntry(e models.LogEntry) {
	msg := e.Message

	switch {
	// System banner lines.
	case strings.Contains(msg, markerSystemStart), strings.Contains(msg, markerGoal):
		b.push(b.newMessage(models.RoleSystem, msg, e.Timestamp, statusForKind(e.Kind)))

	// Research phase opens a step.
	case strings.Contains(msg, markerResearchStart):
		b.openStep(tagResearch, groupResearch, msg, e.Timestamp)

	// Research progress attaches to the open research step.
	case b.openTag == tagResearch &&
		(strings.Contains(msg, markerResearchExec) || strings.Contains(msg, markerResearchSaved)):
		b.appendChild(msg, e.Timestamp, statusForKind(e.Kind))

	// Research completion closes the step and auto-collapses it.
	case strings.Contains(msg, markerResearchDone):
		if b.openTag == tagResearch {
			b.closeStep(models.StatusSuccess, true)
		} else {
			b.push(b.newMessage(models.RoleAgent, msg, e.Timestamp, models.StatusSuccess))
		}

	// Research failure marks whatever step is open; left expanded so the
	// failure is visible.
	case strings.Contains(msg, markerResearchFail):
		if b.open != nil {
			b.open.Status = models.StatusError
			b.appendChild(msg, e.Timestamp, models.StatusError)
			b.closeStep(models.StatusError, false)
		} else {
			b.push(b.newMessage(models.RoleAgent, msg, e.Timestamp, models.StatusError))
		}

	// Final report is a standalone agent message.
	case strings.Contains(msg, markerFinalReport):
		b.push(b.newMessage(models.RoleAgent, msg, e.Timestamp, models.StatusSuccess))

	// Planning opens a step. The review marker contains neither check by
	// accident: a "Generating Plan" line that is simultaneously a review
	// line must be handled by the review rule below.
	case strings.Contains(msg, markerPlanStart) && !strings.Contains(msg, markerPlanReview):
		b.openStep(tagPlanning, groupPlanning, msg, e.Timestamp)

	// Plan review. Checked before the plain plan-generated rule because the
	// review text is a superset of it.
	case strings.Contains(msg, markerPlanReview):
		b.attachPlanReview(msg, e)

	// Plain plan-generated transition, only reachable when the entry is not
	// a review line.
	case strings.Contains(msg, markerPlanDone):
		if b.openTag == tagPlanning {
			b.appendChild(msg, e.Timestamp, models.StatusSuccess)
			b.closeStep(models.StatusSuccess, !b.opts.HITL)
		} else {
			b.push(b.newMessage(models.RoleAgent, msg, e.Timestamp, models.StatusSuccess))
		}

	// Execution step opens, keyed by the extracted step number.
	case stepExecPattern.MatchString(msg):
		n := stepExecPattern.FindStringSubmatch(msg)[1]
		b.openStep(tagExecution, n, msg, e.Timestamp)

	// Agent selection belongs to an open execution step only. An orphan
	// selection marker is dropped rather than attached to an unrelated step.
	case strings.Contains(msg, markerAgentSelected) || strings.Contains(msg, markerAgentSelect2):
		if b.openTag == tagExecution {
			b.appendChild(msg, e.Timestamp, statusForKind(e.Kind))
		}

	// Execution step completes, textually or via the success glyph.
	case b.openTag == tagExecution &&
		(strings.Contains(msg, markerStepDone) || strings.Contains(msg, markerSuccessGlyph)):
		b.closeStep(models.StatusSuccess, true)

	// Errors mark the open step and attach; otherwise they stand alone.
	case e.Kind == models.KindError:
		if b.open != nil {
			b.open.Status = models.StatusError
			b.appendChild(msg, e.Timestamp, models.StatusError)
		} else {
			b.push(b.newMessage(models.RoleAgent, msg, e.Timestamp, models.StatusError))
		}

	// Input requests surface as warning-flagged agent messages.
	case e.Kind == models.KindInputRequest:
		b.push(b.newMessage(models.RoleAgent, msg, e.Timestamp, models.StatusWarning))

	// Terminal markers.
	case strings.Contains(msg, markerMissionDone):
		b.push(b.newMessage(models.RoleSystem, msg, e.Timestamp, models.StatusSuccess))

	case strings.Contains(msg, markerReportSaved):
		b.push(b.newMessage(models.RoleSystem, msg, e.Timestamp, models.StatusSuccess))

	// Fallback: untyped substep inside an open step, standalone otherwise.
	default:
		if b.open != nil {
			b.appendChild(msg, e.Timestamp, statusForKind(e.Kind))
		} else {
			b.push(b.newMessage(models.RoleAgent, msg, e.Timestamp, statusForKind(e.Kind)))
		}
	}
}

// attachPlanReview attaches a review line to the most recent planning step.
// The open-step pointer may already have been cleared by the time a review
// marker arrives, so the top-level list is searched instead.
func (b *builder) attachPlanReview(msg string, e models.LogEntry) {
	var plan *models.StructuredMessage
	for i := len(b.messages) - 1; i >= 0; i-- {
		if m := b.messages[i]; m.IsStep() && m.GroupKey == groupPlanning {
			plan = m
			break
		}
	}
	if plan == nil {
		b.push(b.newMessage(models.RoleAgent, msg, e.Timestamp, statusForKind(e.Kind)))
		return
	}

	plan.Children = append(plan.Children, b.newMessage(models.RoleSubstep, msg, e.Timestamp, statusForKind(e.Kind)))
	plan.Status = models.StatusSuccess
	plan.Collapsed = !b.opts.HITL
	if b.open == plan {
		b.open = nil
		b.openTag = tagNone
	}
}

func (b *builder) newMessage(role models.MessageRole, content string, ts float64, status models.MessageStatus) *models.StructuredMessage {
	b.nextID++
	return &models.StructuredMessage{
		ID:        fmt.Sprintf("m%d", b.nextID),
		Role:      role,
		Content:   content,
		Timestamp: ts,
		Status:    status,
	}
}

func (b *builder) push(m *models.StructuredMessage) {
	b.messages = append(b.messages, m)
}

// openStep starts a new step at the top level. An already-open step is
// implicitly left behind with whatever state it accumulated.
func (b *builder) openStep(tag stepTag, groupKey, content string, ts float64) {
	step := b.newMessage(models.RoleStep, content, ts, "")
	step.GroupKey = groupKey
	b.push(step)
	b.open = step
	b.openTag = tag
}

// closeStep finalizes the open step and clears the pointer.
func (b *builder) closeStep(status models.MessageStatus, collapsed bool) {
	if b.open == nil {
		return
	}
	b.open.Status = status
	b.open.Collapsed = collapsed
	b.open = nil
	b.openTag = tagNone
}

// appendChild attaches a substep to the open step.
func (b *builder) appendChild(content string, ts float64, status models.MessageStatus) {
	child := b.newMessage(models.RoleSubstep, content, ts, status)
	b.open.Children = append(b.open.Children, child)
}

// statusForKind derives a message status from a log kind. Plain kinds carry
// no status.
func statusForKind(k models.LogKind) models.MessageStatus {
	switch k {
	case models.KindSuccess:
		return models.StatusSuccess
	case models.KindWarning:
		return models.StatusWarning
	case models.KindError:
		return models.StatusError
	default:
		return ""
	}
}

// resolveCollapse applies collapse state after the forest is built. A durable
// preference (keyed by group key) wins; failing that, a step that existed in
// the prior forest keeps its previous flag; otherwise the value computed
// during classification stands.
func resolveCollapse(tree, prior []*models.StructuredMessage, prefs map[string]bool) {
	prev := make(map[string]bool, len(prior))
	for _, m := range prior {
		if m.IsStep() {
			prev[m.ID] = m.Collapsed
		}
	}

	for _, m := range tree {
		if !m.IsStep() {
			continue
		}
		if v, ok := prefs[m.GroupKey]; ok {
			m.Collapsed = v
		} else if v, ok := prev[m.ID]; ok {
			m.Collapsed = v
		}
	}
}
