package contact

// Keys persisted by configurations. They never change once published.
const (
	KeyPWPopovJKR      = "5048D3D96D3843949F5B427DF9FCCEDF"
	KeyPWHertzMindlin  = "B18A46C2786D4D44B925A8A04D0D1098"
	KeyPPHertzMindlin  = "B18A46C2786D4D44B925A8A04D0D1008"
	KeyPPPopovJKR      = "5048D3D96D3843949F5B427DF9FCCED0"
	KeyPPLinearElastic = "7A4A3F2C1E8B4C0D9E6F5A4B3C2D1E0F"
)

func NewPWPopovJKR() Model {
	return newPWModel(Info{Name: "Popov-JKR", Key: KeyPWPopovJKR, HelpFile: "/Contact Models/PopovJKR.pdf"}, popovJKR)
}

func NewPWHertzMindlin() Model {
	return newPWModel(Info{Name: "Hertz-Mindlin", Key: KeyPWHertzMindlin, HelpFile: "/Contact Models/HertzMindlin.pdf"}, hertzMindlin)
}

func NewPPHertzMindlin() Model {
	return newPPModel(Info{Name: "Hertz-Mindlin", Key: KeyPPHertzMindlin, HelpFile: "/Contact Models/HertzMindlin.pdf"}, hertzMindlin)
}

func NewPPPopovJKR() Model {
	return newPPModel(Info{Name: "Popov-JKR", Key: KeyPPPopovJKR, HelpFile: "/Contact Models/PopovJKR.pdf"}, popovJKR)
}

func NewPPLinearElastic() Model {
	return newPPModel(Info{Name: "Linear elastic", Key: KeyPPLinearElastic, HelpFile: "/Contact Models/LinearElastic.pdf"}, linearElastic,
		Parameter{Name: "normal_stiffness", Description: "Normal spring stiffness [N/m]", Default: 1e5},
		Parameter{Name: "tangential_stiffness", Description: "Tangential spring stiffness [N/m]", Default: 8e4},
	)
}
