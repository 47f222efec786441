package handler

type goToStepRequest struct {
	Step string `json:"step"`
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

type availabilityRequest struct {
	Channel string `json:"channel"`
}
