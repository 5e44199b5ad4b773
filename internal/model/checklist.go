package model

type OfficeKind string

const (
	OfficeKindPhysical    OfficeKind = "physical"
	OfficeKindNonPhysical OfficeKind = "non_physical"
)

func OfficeKindFor(isPhysical bool) OfficeKind {
	if isPhysical {
		return OfficeKindPhysical
	}
	return OfficeKindNonPhysical
}

const (
	ChecklistNoticeConfirmed      = "notice_confirmed"
	ChecklistBelongingsRemoved    = "belongings_removed"
	ChecklistKeysReturned         = "keys_returned"
	ChecklistRoomInspected        = "room_inspected"
	ChecklistDocSubmitted         = "doc_submitted"
	ChecklistDocApproved          = "doc_approved"
	ChecklistSettlementCalculated = "settlement_calculated"
	ChecklistRefundProcessed      = "refund_processed"
)

var (
	baseChecklist = []string{
		ChecklistNoticeConfirmed,
		ChecklistDocSubmitted,
		ChecklistDocApproved,
		ChecklistSettlementCalculated,
		ChecklistRefundProcessed,
	}
	moveOutChecklist = []string{
		ChecklistBelongingsRemoved,
		ChecklistKeysReturned,
		ChecklistRoomInspected,
	}
)

// ChecklistSchema returns the ordered checklist keys for an office kind.
// Physical offices get the move-out steps right after notice_confirmed.
func ChecklistSchema(kind OfficeKind) []string {
	if kind != OfficeKindPhysical {
		return append([]string(nil), baseChecklist...)
	}
	keys := make([]string, 0, len(baseChecklist)+len(moveOutChecklist))
	keys = append(keys, baseChecklist[0])
	keys = append(keys, moveOutChecklist...)
	keys = append(keys, baseChecklist[1:]...)
	return keys
}

func HasChecklistItem(kind OfficeKind, item string) bool {
	for _, key := range ChecklistSchema(kind) {
		if key == item {
			return true
		}
	}
	return false
}

type Checklist map[string]bool

// NewChecklist returns a checklist with every schema key set to false.
func NewChecklist(kind OfficeKind) Checklist {
	schema := ChecklistSchema(kind)
	list := make(Checklist, len(schema))
	for _, key := range schema {
		list[key] = false
	}
	return list
}

// Progress counts the true items that belong to the schema of kind.
func (c Checklist) Progress(kind OfficeKind) (done int, total int) {
	schema := ChecklistSchema(kind)
	for _, key := range schema {
		if c[key] {
			done++
		}
	}
	return done, len(schema)
}

func (c Checklist) Clone() Checklist {
	out := make(Checklist, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
