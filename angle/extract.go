package angle

import "github.com/SuyashBhavalkar3/posturecoach/pose"

// Map holds named joint angles in degrees for one frame. Keys are present
// only when the angle was computable from the detected landmarks.
type Map map[string]float64

// jointTriple names one angle and the landmark indices of its rays, with
// the vertex in the middle.
type jointTriple struct {
	name    string
	a, b, c int
}

// compositeTriple is an angle averaged over the left and right side of the
// body. A side whose angle is not computable defaults to upright (180°)
// before averaging, biasing composite metrics toward "no complaint" when
// one side is occluded.
type compositeTriple struct {
	name  string
	right jointTriple
	left  jointTriple
}

// exerciseTable lists the angles computed for one exercise kind.
type exerciseTable struct {
	joints     []jointTriple
	composites []compositeTriple
}

var (
	rightKnee = jointTriple{"right_knee", pose.RightHip, pose.RightKnee, pose.RightAnkle}
	leftKnee  = jointTriple{"left_knee", pose.LeftHip, pose.LeftKnee, pose.LeftAnkle}
	rightHip  = jointTriple{"right_hip", pose.RightShoulder, pose.RightHip, pose.RightKnee}
	leftHip   = jointTriple{"left_hip", pose.LeftShoulder, pose.LeftHip, pose.LeftKnee}

	rightElbow = jointTriple{"right_elbow", pose.RightShoulder, pose.RightElbow, pose.RightWrist}
	leftElbow  = jointTriple{"left_elbow", pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist}

	rightBack = jointTriple{"right_back", pose.RightShoulder, pose.RightHip, pose.RightAnkle}
	leftBack  = jointTriple{"left_back", pose.LeftShoulder, pose.LeftHip, pose.LeftAnkle}

	rightShoulderAbd = jointTriple{"right_shoulder_abd", pose.RightElbow, pose.RightShoulder, pose.RightHip}
	leftShoulderAbd  = jointTriple{"left_shoulder_abd", pose.LeftElbow, pose.LeftShoulder, pose.LeftHip}

	// shoulder-hip-ankle per side, used by torso_angle and body_angle
	rightBodyLine = jointTriple{"", pose.RightShoulder, pose.RightHip, pose.RightAnkle}
	leftBodyLine  = jointTriple{"", pose.LeftShoulder, pose.LeftHip, pose.LeftAnkle}
)

// exerciseTables defines the supported exercise kinds. Adding a kind is
// additive: declare its angles here and its rules in the feedback package.
var exerciseTables = map[string]exerciseTable{
	"squat": {
		joints: []jointTriple{rightKnee, leftKnee, rightHip, leftHip},
	},
	"lunge": {
		joints: []jointTriple{rightKnee, leftKnee, rightHip, leftHip},
		composites: []compositeTriple{
			{name: "torso_angle", right: rightBodyLine, left: leftBodyLine},
		},
	},
	"deadlift": {
		joints: []jointTriple{rightHip, leftHip, rightBack, leftBack, rightKnee, leftKnee},
	},
	"pushup": {
		joints: []jointTriple{rightElbow, leftElbow},
		composites: []compositeTriple{
			{name: "body_angle", right: rightBodyLine, left: leftBodyLine},
		},
	},
	"shoulder_press": {
		joints: []jointTriple{rightElbow, leftElbow, rightShoulderAbd, leftShoulderAbd},
	},
	"bicep_curl": {
		joints: []jointTriple{rightElbow, leftElbow},
	},
}

// Supported reports whether kind has an angle table.
func Supported(kind string) bool {
	_, ok := exerciseTables[kind]
	return ok
}

// ForExercise computes the named angles for kind from a full detection.
// It returns an empty Map when the detection is incomplete (fewer than 33
// landmarks) or the kind is unknown; callers interpret the latter as
// "unsupported" via Supported.
func ForExercise(kind string, lms []pose.Landmark) Map {
	angles := make(Map)
	if !pose.Complete(lms) {
		return angles
	}

	table, ok := exerciseTables[kind]
	if !ok {
		return angles
	}

	for _, jt := range table.joints {
		if deg, ok := jointDegrees(jt, lms); ok {
			angles[jt.name] = deg
		}
	}

	for _, ct := range table.composites {
		right := 180.0
		if deg, ok := jointDegrees(ct.right, lms); ok {
			right = deg
		}
		left := 180.0
		if deg, ok := jointDegrees(ct.left, lms); ok {
			left = deg
		}
		angles[ct.name] = (right + left) / 2
	}

	return angles
}

func jointDegrees(jt jointTriple, lms []pose.Landmark) (float64, bool) {
	return At(
		Point{X: lms[jt.a].X, Y: lms[jt.a].Y},
		Point{X: lms[jt.b].X, Y: lms[jt.b].Y},
		Point{X: lms[jt.c].X, Y: lms[jt.c].Y},
	)
}
