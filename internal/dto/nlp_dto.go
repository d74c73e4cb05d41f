package dto

type NLPTag struct {
	Word  string `json:"Word"`
	Count int    `json:"Count"`
}

type NLPResponse struct {
	Fid  string   `json:"fid"`
	Info []NLPTag `json:"info"`
}

type NLPRequest struct {
	Fid      string `validate:"required"`
	Category string `validate:"required,oneof=t a r p"`
	Start    int    `validate:"gte=0,ltfield=End"`
	End      int    `validate:"lte=50"`
}
