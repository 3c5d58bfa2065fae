package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterStudentRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

type RegisterTARequest struct {
	Name       string `json:"name" validate:"required,max=128"`
	SecretCode string `json:"secret_code" validate:"required"`
}

type IdentityResponse struct {
	Address    string `json:"address"`
	Role       string `json:"role"`
	RoleCode   int    `json:"role_code"`
	Name       string `json:"name"`
	Registered bool   `json:"registered"`
	TASlot     int    `json:"ta_slot,omitempty"`
}

type RosterResponse struct {
	Professor string `json:"professor"`
	TA1       string `json:"ta1"`
	TA2       string `json:"ta2"`
}

type StudentItem struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

type StudentsResponse struct {
	Items []StudentItem `json:"items"`
}

type CreatePresentationRequest struct {
	Category       string `json:"category" validate:"required"`
	StudentAddress string `json:"student_address" validate:"required"`
}

type PresentationIDsResponse struct {
	IDs []int64 `json:"ids"`
}

// VoteRequest uses a pointer so an explicit false is distinguishable from a
// missing field.
type VoteRequest struct {
	Pass *bool `json:"pass" validate:"required"`
}

type TallyResponse struct {
	PassBlocks    int `json:"pass_blocks"`
	FailBlocks    int `json:"fail_blocks"`
	Participating int `json:"participating"`
}

type PresentationResponse struct {
	ID             int64         `json:"id"`
	Category       string        `json:"category"`
	StudentName    string        `json:"student_name"`
	StudentAddress string        `json:"student_address"`
	CreatedAt      string        `json:"created_at"`
	Result         string        `json:"result"`
	ResultCode     int           `json:"result_code"`
	ProfessorVote  string        `json:"professor_vote"`
	TA1Vote        string        `json:"ta1_vote"`
	TA2Vote        string        `json:"ta2_vote"`
	StudentPass    int64         `json:"student_pass"`
	StudentFail    int64         `json:"student_fail"`
	StudentBlock   string        `json:"student_block,omitempty"`
	Tally          TallyResponse `json:"tally"`
	FinalizedAt    string        `json:"finalized_at,omitempty"`
}
