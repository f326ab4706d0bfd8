package partners

var defaultPartners = []Partner{
	{Name: "ABAI", Campaigns: []string{
		"ABAI MASIVO",
		"ABAI PROACTIVO",
		"ABAI SEGUNDO ANILLO",
		"ABAI TERCER ANILLO",
		"ABAI WHATSAPP",
	}},
	{Name: "ALMACONTACT", Campaigns: []string{
		"ALMACONTACT SWAT",
	}},
	{Name: "AQI", Campaigns: []string{
		"AQI SEGUNDO ANILLO",
		"AQI MASIVO BARRANQUILLA",
		"AQI TERCER ANILLO",
		"AQI WHATSAPP",
	}},
	{Name: "ATENTO", Campaigns: []string{
		"ATENTO SWAT BOGOTÁ",
		"ATENTO TRASLADOS PEREIRA",
		"ATENTO PROACTIVO",
		"ATENTO SEGUNDO ANILLO",
	}},
	{Name: "BRM", Campaigns: []string{
		"BRM FILTRO",
		"BRM MASIVO MEDELLÍN",
		"BRM TERCER ANILLO",
		"BRM WHATSAPP",
	}},
	// CLARO is the carrier every other partner sells for.
	{Name: "CLARO", Campaigns: []string{
		"ATENTO SWAT BOGOTÁ",
		"BRM FILTRO",
		"MILLENIUM MASIVO",
		"COS SEGUNDO ANILLO",
		"BRM MASIVO MEDELLÍN",
		"ATENTO TRASLADOS PEREIRA",
		"ATENTO PROACTIVO",
		"COS FIDELIZACIÓN BOGOTÁ",
		"ABAI MASIVO",
		"AQI MASIVO BARRANQUILLA",
		"COS MASIVO BOGOTÁ",
		"IBR LATAM SAC",
		"AQI WHATSAPP",
		"BRM WHATSAPP",
		"AQI SEGUNDO ANILLO",
		"ATENTO SEGUNDO ANILLO",
		"ALMACONTACT SWAT",
		"NEXA MASIVO",
		"ABAI SEGUNDO ANILLO",
		"ABAI PROACTIVO",
		"COS WHATSAPP",
		"MILLENIUM WEB CENTER",
		"COS RECUPERACIÓN BOGOTÁ",
		"NO EXISTE CAMPAÑA",
		"ABAI WHATSAPP",
		"ABAI TERCER ANILLO",
		"AQI TERCER ANILLO",
		"BRM TERCER ANILLO",
		"COS UPSPELLING",
	}},
	{Name: "COS", Campaigns: []string{
		"COS SEGUNDO ANILLO",
		"COS FIDELIZACIÓN BOGOTÁ",
		"COS MASIVO BOGOTÁ",
		"COS WHATSAPP",
		"COS RECUPERACIÓN BOGOTÁ",
		"COS UPSPELLING",
	}},
	{Name: "IBR LATAM", Campaigns: []string{
		"IBR LATAM SAC",
	}},
	{Name: "LATCOM"},
	{Name: "MILLENIUM", Campaigns: []string{
		"MILLENIUM MASIVO",
		"MILLENIUM WEB CENTER",
	}},
	{Name: "NEXA", Campaigns: []string{
		"NEXA MASIVO",
	}},
}
