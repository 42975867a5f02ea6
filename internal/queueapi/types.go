package queueapi

// Ticket is a single patient's place in a room queue. ID is the only identity
// that stays stable across polls; TicketCode and QueueNumber are display values.
type Ticket struct {
	ID                   string `json:"id"`
	TicketCode           string `json:"ticketCode"`
	QueueNumber          int    `json:"queueNumber"`
	QueueDate            string `json:"queueDate,omitempty"`
	PatientID            string `json:"patientId,omitempty"`
	PatientCode          string `json:"patientCode,omitempty"`
	PatientName          string `json:"patientName,omitempty"`
	RoomID               string `json:"roomId,omitempty"`
	RoomName             string `json:"roomName,omitempty"`
	QueueType            int    `json:"queueType,omitempty"`
	QueueTypeName        string `json:"queueTypeName,omitempty"`
	Priority             int    `json:"priority"`
	PriorityName         string `json:"priorityName"`
	Status               int    `json:"status,omitempty"`
	StatusName           string `json:"statusName,omitempty"`
	CalledCount          int    `json:"calledCount,omitempty"`
	CalledAt             string `json:"calledAt,omitempty"`
	ServedAt             string `json:"servedAt,omitempty"`
	CompletedAt          string `json:"completedAt,omitempty"`
	EstimatedWaitMinutes int    `json:"estimatedWaitMinutes"`
	Counter              string `json:"counter,omitempty"`
	CalledBy             string `json:"calledBy,omitempty"`
}

// RoomSnapshot is one room's queue state as returned by a single poll.
type RoomSnapshot struct {
	RoomID             string   `json:"roomId"`
	RoomName           string   `json:"roomName"`
	DoctorName         string   `json:"doctorName,omitempty"`
	CurrentServing     *Ticket  `json:"currentServing,omitempty"`
	CallingList        []Ticket `json:"callingList"`
	WaitingList        []Ticket `json:"waitingList"`
	TotalWaiting       int      `json:"totalWaiting"`
	AverageWaitMinutes float64  `json:"averageWaitMinutes"`
}

// Lab order statuses.
const (
	LabStatusAwaitingSample = 1
	LabStatusSampled        = 2
	LabStatusProcessing     = 3
	LabStatusAwaitingReview = 4
	LabStatusCompleted      = 5
)

var labStatusLabels = map[int]string{
	LabStatusAwaitingSample: "Chờ lấy mẫu",
	LabStatusSampled:        "Đã lấy mẫu",
	LabStatusProcessing:     "Đang xử lý",
	LabStatusAwaitingReview: "Chờ duyệt",
	LabStatusCompleted:      "Hoàn thành",
}

// LabStatusLabel returns the display label for a lab order status.
func LabStatusLabel(status int) string {
	if label, ok := labStatusLabels[status]; ok {
		return label
	}
	return "Không xác định"
}

// LabItem is a laboratory order shown on the lab results board.
type LabItem struct {
	ID             string `json:"id"`
	OrderCode      string `json:"orderCode"`
	SampleBarcode  string `json:"sampleBarcode,omitempty"`
	PatientName    string `json:"patientName"`
	PatientCode    string `json:"patientCode,omitempty"`
	SampleType     string `json:"sampleType,omitempty"`
	TestCount      int    `json:"testCount"`
	TestSummary    string `json:"testSummary"`
	IsPriority     bool   `json:"isPriority"`
	IsEmergency    bool   `json:"isEmergency"`
	Status         int    `json:"status"`
	StatusName     string `json:"statusName"`
	OrderedAt      string `json:"orderedAt,omitempty"`
	CollectedAt    string `json:"collectedAt,omitempty"`
	CompletedAt    string `json:"completedAt,omitempty"`
	WaitMinutes    int    `json:"waitMinutes"`
	DepartmentName string `json:"departmentName,omitempty"`
}

// LabDisplay is the lab results board snapshot.
type LabDisplay struct {
	UpdatedAt                string    `json:"updatedAt,omitempty"`
	TotalPending             int       `json:"totalPending"`
	TotalProcessing          int       `json:"totalProcessing"`
	TotalCompletedToday      int       `json:"totalCompletedToday"`
	AverageProcessingMinutes float64   `json:"averageProcessingMinutes"`
	ProcessingItems          []LabItem `json:"processingItems"`
	WaitingItems             []LabItem `json:"waitingItems"`
	CompletedItems           []LabItem `json:"completedItems"`
}
