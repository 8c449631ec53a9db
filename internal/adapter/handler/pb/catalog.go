package pb

type GetPartsRequest struct {
	Model string `json:"model"`
	Year  int32  `json:"year,omitempty"`
}

func (x *GetPartsRequest) GetModel() string {
	if x != nil {
		return x.Model
	}
	return ""
}

func (x *GetPartsRequest) GetYear() int32 {
	if x != nil {
		return x.Year
	}
	return 0
}

type GetPartsResponse struct {
	Parts []*Part `json:"parts"`
}

func (x *GetPartsResponse) GetParts() []*Part {
	if x != nil {
		return x.Parts
	}
	return nil
}
