package angle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuyashBhavalkar3/posturecoach/pose"
)

// standingPose returns a full detection of a person standing upright,
// facing the camera. All joints are distinct so every angle is computable.
func standingPose() []pose.Landmark {
	lms := make([]pose.Landmark, pose.NumLandmarks)
	for i := range lms {
		// Scatter unused landmarks so no two coincide.
		lms[i] = pose.Landmark{X: 0.1 + float64(i)*0.001, Y: 0.05 + float64(i)*0.001, Visibility: 1}
	}

	set := func(idx int, x, y float64) {
		lms[idx] = pose.Landmark{X: x, Y: y, Visibility: 1}
	}

	// Upright stance: shoulders above hips above knees above ankles.
	set(pose.LeftShoulder, 0.45, 0.20)
	set(pose.RightShoulder, 0.55, 0.20)
	set(pose.LeftElbow, 0.42, 0.35)
	set(pose.RightElbow, 0.58, 0.35)
	set(pose.LeftWrist, 0.40, 0.50)
	set(pose.RightWrist, 0.60, 0.50)
	set(pose.LeftHip, 0.46, 0.50)
	set(pose.RightHip, 0.54, 0.50)
	set(pose.LeftKnee, 0.46, 0.70)
	set(pose.RightKnee, 0.54, 0.70)
	set(pose.LeftAnkle, 0.46, 0.90)
	set(pose.RightAnkle, 0.54, 0.90)

	return lms
}

func TestForExercise_ShortLandmarks(t *testing.T) {
	kinds := []string{"squat", "lunge", "deadlift", "pushup", "shoulder_press", "bicep_curl"}
	short := standingPose()[:pose.NumLandmarks-1]

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			assert.Empty(t, ForExercise(kind, short))
			assert.Empty(t, ForExercise(kind, nil))
		})
	}
}

func TestForExercise_UnknownKind(t *testing.T) {
	assert.Empty(t, ForExercise("cartwheel", standingPose()))
	assert.False(t, Supported("cartwheel"))
	assert.True(t, Supported("squat"))
}

func TestForExercise_SquatKeys(t *testing.T) {
	angles := ForExercise("squat", standingPose())

	require.Len(t, angles, 4)
	for _, key := range []string{"right_knee", "left_knee", "right_hip", "left_hip"} {
		deg, ok := angles[key]
		require.True(t, ok, "missing %s", key)
		assert.GreaterOrEqual(t, deg, 0.0)
		assert.LessOrEqual(t, deg, 180.0)
	}

	// Standing straight means knees and hips are close to fully extended.
	assert.Greater(t, angles["right_knee"], 170.0)
	assert.Greater(t, angles["left_knee"], 170.0)
}

func TestForExercise_Tables(t *testing.T) {
	tests := []struct {
		kind string
		keys []string
	}{
		{"lunge", []string{"right_knee", "left_knee", "right_hip", "left_hip", "torso_angle"}},
		{"deadlift", []string{"right_hip", "left_hip", "right_back", "left_back", "right_knee", "left_knee"}},
		{"pushup", []string{"right_elbow", "left_elbow", "body_angle"}},
		{"shoulder_press", []string{"right_elbow", "left_elbow", "right_shoulder_abd", "left_shoulder_abd"}},
		{"bicep_curl", []string{"right_elbow", "left_elbow"}},
	}

	for _, test := range tests {
		t.Run(test.kind, func(t *testing.T) {
			angles := ForExercise(test.kind, standingPose())
			require.Len(t, angles, len(test.keys))
			for _, key := range test.keys {
				assert.Contains(t, angles, key)
			}
		})
	}
}

func TestForExercise_CompositeDefaultsMissingSide(t *testing.T) {
	lms := standingPose()

	// Collapse the left body line so the left-side angle is undefined.
	lms[pose.LeftShoulder] = lms[pose.LeftHip]
	lms[pose.LeftAnkle] = lms[pose.LeftHip]

	angles := ForExercise("lunge", lms)
	torso, ok := angles["torso_angle"]
	require.True(t, ok, "composite must remain evaluable with one side occluded")

	// The right side is an upright ~180° line and the missing left side
	// defaults to 180°, so the average stays near upright.
	assert.InDelta(t, 180, torso, 2.0)
}

func TestForExercise_DegenerateJointOmitted(t *testing.T) {
	lms := standingPose()
	lms[pose.RightHip] = lms[pose.RightKnee] // right knee angle undefined

	angles := ForExercise("squat", lms)
	assert.NotContains(t, angles, "right_knee")
	assert.Contains(t, angles, "left_knee")
}
