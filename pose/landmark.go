package pose

// Landmark is a detected anatomical point. Coordinates are normalized to
// the frame (0..1 on both axes); Visibility is the engine's confidence
// that the point is actually visible.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility"`
}

// NumLandmarks is the size of a full-body detection. The engine emits
// exactly this many landmarks in a fixed order; anything shorter is
// treated as no detection.
const NumLandmarks = 33

// Landmark indices in the engine's fixed topology (MediaPipe Pose ordering).
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
)

// Complete reports whether lms is a full detection usable for angle
// extraction.
func Complete(lms []Landmark) bool {
	return len(lms) >= NumLandmarks
}

// Connections lists the skeleton edges drawn by the renderer, as pairs of
// landmark indices.
var Connections = [][2]int{
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow},
	{LeftElbow, LeftWrist},
	{RightShoulder, RightElbow},
	{RightElbow, RightWrist},
	{LeftShoulder, LeftHip},
	{RightShoulder, RightHip},
	{LeftHip, RightHip},
	{LeftHip, LeftKnee},
	{LeftKnee, LeftAnkle},
	{RightHip, RightKnee},
	{RightKnee, RightAnkle},
	{LeftAnkle, LeftHeel},
	{LeftHeel, LeftFootIndex},
	{RightAnkle, RightHeel},
	{RightHeel, RightFootIndex},
}
