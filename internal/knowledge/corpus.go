package knowledge

// builtin is the curated provision set. Keywords include common Hindi
// terms so voice transcripts match before translation normalization.
var builtin = []Provision{
	{
		ID:        "cpa_2019",
		Keywords:  []string{"consumer", "product", "defective", "complaint", "refund", "warranty", "fake", "scam", "fraud", "e-commerce", "online order", "उपभोक्ता", "शिकायत"},
		LawName:   "Consumer Protection Act, 2019",
		Section:   "Sections 34-37",
		Summary:   "Consumers can file complaints for defective goods, deficient services, unfair trade practices, or misleading advertisements. District, State, and National Commissions handle disputes.",
		SourceURL: "https://indiankanoon.org/doc/110359706/",
	},
	{
		ID:        "ipc_420",
		Keywords:  []string{"fraud", "cheating", "scam", "dishonesty", "cheat", "धोखाधड़ी"},
		LawName:   "Indian Penal Code, 1860",
		Section:   "Section 420",
		Summary:   "Cheating and dishonestly inducing delivery of property. Punishment up to 7 years imprisonment and fine.",
		SourceURL: "https://indiankanoon.org/doc/1306824/",
	},
	{
		ID:        "it_act",
		Keywords:  []string{"cyber", "online", "internet", "payment", "upi", "identity theft", "phishing", "साइबर अपराध"},
		LawName:   "Information Technology Act, 2000",
		Section:   "Sections 43, 66, 66C, 66D",
		Summary:   "Addresses hacking (Sec 66), identity theft (Sec 66C), cheating by personation using computer resource (Sec 66D). Compensation and imprisonment provisions.",
		SourceURL: "https://indiankanoon.org/doc/1439440/",
	},
	{
		ID:        "cheque_bounce",
		Keywords:  []string{"cheque", "check", "bounce", "dishonour", "negotiable", "चेक बाउंस"},
		LawName:   "Negotiable Instruments Act, 1881",
		Section:   "Section 138",
		Summary:   "Dishonour of cheque for insufficiency of funds is a criminal offence. Complaint must be filed within 30 days of receiving bank memo. Punishment up to 2 years or twice the cheque amount.",
		SourceURL: "https://indiankanoon.org/doc/1823824/",
	},
	{
		ID:        "rent_control",
		Keywords:  []string{"rent", "tenant", "landlord", "eviction", "lease", "rental", "deposit", "किराया", "मकान मालिक"},
		LawName:   "Transfer of Property Act, 1882 / State Rent Control Acts",
		Section:   "Sections 106-111 (TPA)",
		Summary:   "Governs landlord-tenant relationships. Tenants cannot be evicted without due notice. Notice period for month-to-month tenancy is 15 days. State-specific rent control laws provide additional protections.",
		SourceURL: "https://indiankanoon.org/doc/1920037/",
	},
	{
		ID:        "labor_wages",
		Keywords:  []string{"wages", "salary", "minimum wage", "payment", "employer", "worker", "labour", "labor", "वेतन", "मजदूरी"},
		LawName:   "Code on Wages, 2019",
		Section:   "Sections 3-8",
		Summary:   "Establishes minimum wages, timely payment of wages, and equal remuneration. Employers must pay wages before the 7th of each month. Penalties for delayed payment.",
		SourceURL: "https://indiankanoon.org/doc/80400/",
	},
	{
		ID:        "motor_accident",
		Keywords:  []string{"accident", "motor", "vehicle", "insurance", "compensation", "road", "दुर्घटना", "वाहन"},
		LawName:   "Motor Vehicles Act, 1988",
		Section:   "Section 166",
		Summary:   "Victims of motor accidents can claim compensation from Motor Accident Claims Tribunal (MACT). No-fault liability under Section 163A for death/permanent disablement.",
		SourceURL: "https://indiankanoon.org/doc/785258/",
	},
	{
		ID:        "employment_termination",
		Keywords:  []string{"termination", "fired", "dismissed", "retrenchment", "notice period", "employment", "नौकरी", "बर्खास्तगी"},
		LawName:   "Industrial Disputes Act, 1947",
		Section:   "Sections 25F, 25N",
		Summary:   "Retrenchment requires 1 month notice or pay in lieu, and retrenchment compensation of 15 days wages per year of service.",
		SourceURL: "https://indiankanoon.org/doc/1428189/",
	},
}
