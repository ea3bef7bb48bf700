package feedback

import "github.com/SuyashBhavalkar3/posturecoach/angle"

// Fixed messages for states decided before rule evaluation.
const (
	// MsgOutOfFrame is returned when angle extraction produced nothing,
	// meaning the subject is only partially visible.
	MsgOutOfFrame = "Please get fully into the frame."

	// MsgNotSupported is returned for an unknown exercise kind.
	MsgNotSupported = "Exercise not supported yet."
)

// rule is one independent threshold predicate with its fixed message.
type rule struct {
	message string
	fires   func(angles angle.Map) bool
}

// exerciseRules pairs a kind's ordered rule table with its affirmation,
// appended when no rule fires.
type exerciseRules struct {
	rules       []rule
	affirmation string
}

// get reads a named angle, substituting def when the key is absent.
// Defaults are chosen per rule to sit inside the acceptable range, so a
// missing angle biases toward "no complaint" rather than a spurious one.
func get(angles angle.Map, key string, def float64) float64 {
	if deg, ok := angles[key]; ok {
		return deg
	}
	return def
}

// anyBelow fires when any named angle is strictly below threshold.
func anyBelow(threshold, def float64, keys ...string) func(angle.Map) bool {
	return func(angles angle.Map) bool {
		for _, key := range keys {
			if get(angles, key, def) < threshold {
				return true
			}
		}
		return false
	}
}

// anyAbove fires when any named angle is strictly above threshold.
func anyAbove(threshold, def float64, keys ...string) func(angle.Map) bool {
	return func(angles angle.Map) bool {
		for _, key := range keys {
			if get(angles, key, def) > threshold {
				return true
			}
		}
		return false
	}
}

// allAbove fires only when every named angle is strictly above threshold.
func allAbove(threshold, def float64, keys ...string) func(angle.Map) bool {
	return func(angles angle.Map) bool {
		for _, key := range keys {
			if get(angles, key, def) <= threshold {
				return false
			}
		}
		return true
	}
}

// ruleTables holds the per-kind threshold rules, in declaration order.
// New exercise kinds are additive: one entry here, one angle table in the
// angle package.
var ruleTables = map[string]exerciseRules{
	"squat": {
		rules: []rule{
			{"Bend your knees more to reach proper squat depth.", anyAbove(100, 90, "right_knee", "left_knee")},
			{"You're going too low! Keep knees above 60 degrees.", anyBelow(60, 90, "right_knee", "left_knee")},
			{"Keep your back straighter to protect your spine.", anyBelow(70, 90, "right_hip", "left_hip")},
		},
		affirmation: "Good squat form!",
	},
	"lunge": {
		rules: []rule{
			{"Sink deeper into the lunge.", allAbove(150, 150, "right_knee", "left_knee")},
			{"Don't drop your back knee so far.", anyBelow(50, 90, "right_knee", "left_knee")},
			{"Keep your torso upright; avoid leaning forward.", anyBelow(70, 180, "torso_angle")},
		},
		affirmation: "Good lunge form!",
	},
	"deadlift": {
		rules: []rule{
			{"Keep your spine neutral; avoid rounding your back.", anyBelow(140, 180, "right_back", "left_back")},
			{"Hinge at your hips; don't let them collapse.", anyBelow(30, 90, "right_hip", "left_hip")},
			{"Bend your knees less; push your hips back instead.", anyBelow(120, 170, "right_knee", "left_knee")},
		},
		affirmation: "Good deadlift form!",
	},
	"pushup": {
		rules: []rule{
			{"Keep your body in a straight line from shoulders to ankles.", anyBelow(160, 180, "body_angle")},
			{"Lower your chest further toward the floor.", allAbove(160, 160, "right_elbow", "left_elbow")},
			{"Control your descent; don't drop too fast.", anyBelow(60, 90, "right_elbow", "left_elbow")},
		},
		affirmation: "Good pushup form!",
	},
	"shoulder_press": {
		rules: []rule{
			{"Press all the way up to full lockout.", anyBelow(160, 170, "right_elbow", "left_elbow")},
			{"Keep your elbows aligned under your wrists.", anyBelow(60, 90, "right_shoulder_abd", "left_shoulder_abd")},
		},
		affirmation: "Good shoulder press form!",
	},
	"bicep_curl": {
		rules: []rule{
			{"Curl the weight up; don't rest at full extension.", allAbove(160, 160, "right_elbow", "left_elbow")},
			{"Great depth! Squeeze at the top of the curl.", anyBelow(40, 90, "right_elbow", "left_elbow")},
		},
		affirmation: "Good bicep curl form!",
	},
}

// For evaluates the rule table for kind against angles and returns the
// ordered feedback messages. The returned list is never empty.
func For(kind string, angles angle.Map) []string {
	table, ok := ruleTables[kind]
	if !ok {
		return []string{MsgNotSupported}
	}

	if len(angles) == 0 {
		return []string{MsgOutOfFrame}
	}

	var messages []string
	for _, r := range table.rules {
		if r.fires(angles) {
			messages = append(messages, r.message)
		}
	}

	if len(messages) == 0 {
		messages = append(messages, table.affirmation)
	}
	return messages
}
