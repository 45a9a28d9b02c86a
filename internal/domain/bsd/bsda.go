package bsd

// Bsda is the reconstructed state of an asbestos waste tracking document. Unlike Form it is
// nested by actor, mirroring the input shape editors submit.
type Bsda struct {
	ID        *string `json:"id,omitempty"`
	Status    *string `json:"status,omitempty"`
	Type      *string `json:"type,omitempty"`
	IsDraft   *bool   `json:"isDraft,omitempty"`
	IsDeleted *bool   `json:"isDeleted,omitempty"`

	Emitter      *BsdaEmitter      `json:"emitter,omitempty"`
	EcoOrganisme *EcoOrganisme     `json:"ecoOrganisme,omitempty"`
	Waste        *BsdaWaste        `json:"waste,omitempty"`
	Packagings   []BsdaPackaging   `json:"packagings,omitempty"`
	Weight       *BsdaWeight       `json:"weight,omitempty"`
	Worker       *BsdaWorker       `json:"worker,omitempty"`
	Transporter  *BsdaTransporter  `json:"transporter,omitempty"`
	Destination  *BsdaDestination  `json:"destination,omitempty"`
	Broker       *BsdaIntermediary `json:"broker,omitempty"`
}

type Company struct {
	Name      *string `json:"name,omitempty"`
	Siret     *string `json:"siret,omitempty"`
	VatNumber *string `json:"vatNumber,omitempty"`
	Address   *string `json:"address,omitempty"`
	Contact   *string `json:"contact,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Mail      *string `json:"mail,omitempty"`
}

type Signature struct {
	Author *string `json:"author,omitempty"`
	Date   *Date   `json:"date,omitempty"`
}

type EcoOrganisme struct {
	Name  *string `json:"name,omitempty"`
	Siret *string `json:"siret,omitempty"`
}

type PickupSite struct {
	Name       *string `json:"name,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	Infos      *string `json:"infos,omitempty"`
}

type BsdaEmitter struct {
	IsPrivateIndividual *bool         `json:"isPrivateIndividual,omitempty"`
	Company             *Company      `json:"company,omitempty"`
	PickupSite          *PickupSite   `json:"pickupSite,omitempty"`
	CustomInfo          *string       `json:"customInfo,omitempty"`
	Emission            *BsdaEmission `json:"emission,omitempty"`
}

type BsdaEmission struct {
	Signature *Signature `json:"signature,omitempty"`
}

type BsdaWaste struct {
	Code            *string  `json:"code,omitempty"`
	Name            *string  `json:"name,omitempty"`
	FamilyCode      *string  `json:"familyCode,omitempty"`
	MaterialName    *string  `json:"materialName,omitempty"`
	ConsistenceType *string  `json:"consistence,omitempty"`
	Adr             *string  `json:"adr,omitempty"`
	Pop             *bool    `json:"pop,omitempty"`
	SealNumbers     []string `json:"sealNumbers,omitempty"`
}

type BsdaPackaging struct {
	Type     string `json:"type"`
	Other    string `json:"other,omitempty"`
	Quantity int    `json:"quantity"`
}

type BsdaWeight struct {
	IsEstimate *bool    `json:"isEstimate,omitempty"`
	Value      *float64 `json:"value,omitempty"`
}

type BsdaWorker struct {
	IsDisabled *bool     `json:"isDisabled,omitempty"`
	Company    *Company  `json:"company,omitempty"`
	Work       *BsdaWork `json:"work,omitempty"`
}

type BsdaWork struct {
	HasEmitterPaperSignature *bool      `json:"hasEmitterPaperSignature,omitempty"`
	Signature                *Signature `json:"signature,omitempty"`
}

type BsdaTransporter struct {
	Company   *Company       `json:"company,omitempty"`
	Recepisse *Recepisse     `json:"recepisse,omitempty"`
	Transport *BsdaTransport `json:"transport,omitempty"`
}

type Recepisse struct {
	IsExempted    *bool   `json:"isExempted,omitempty"`
	Number        *string `json:"number,omitempty"`
	Department    *string `json:"department,omitempty"`
	ValidityLimit *Date   `json:"validityLimit,omitempty"`
}

type BsdaTransport struct {
	Mode        *string    `json:"mode,omitempty"`
	Plates      []string   `json:"plates,omitempty"`
	TakenOverAt *Date      `json:"takenOverAt,omitempty"`
	Signature   *Signature `json:"signature,omitempty"`
}

type BsdaDestination struct {
	Company              *Company       `json:"company,omitempty"`
	Cap                  *string        `json:"cap,omitempty"`
	PlannedOperationCode *string        `json:"plannedOperationCode,omitempty"`
	CustomInfo           *string        `json:"customInfo,omitempty"`
	Reception            *BsdaReception `json:"reception,omitempty"`
	Operation            *BsdaOperation `json:"operation,omitempty"`
}

type BsdaReception struct {
	Date              *Date    `json:"date,omitempty"`
	Weight            *float64 `json:"weight,omitempty"`
	AcceptationStatus *string  `json:"acceptationStatus,omitempty"`
	RefusalReason     *string  `json:"refusalReason,omitempty"`
}

type BsdaOperation struct {
	Code        *string    `json:"code,omitempty"`
	Mode        *string    `json:"mode,omitempty"`
	Description *string    `json:"description,omitempty"`
	Date        *Date      `json:"date,omitempty"`
	Signature   *Signature `json:"signature,omitempty"`
}

type BsdaIntermediary struct {
	Company *Company `json:"company,omitempty"`
}

// BsdaSignature is the part of a BSDA a signature event may write: the status and the
// signature block of whichever actor signed.
type BsdaSignature struct {
	Status  *string `json:"status,omitempty"`
	Emitter *struct {
		Emission *BsdaEmission `json:"emission,omitempty"`
	} `json:"emitter,omitempty"`
	Worker *struct {
		Work *BsdaWork `json:"work,omitempty"`
	} `json:"worker,omitempty"`
	Transporter *struct {
		Transport *struct {
			TakenOverAt *Date      `json:"takenOverAt,omitempty"`
			Signature   *Signature `json:"signature,omitempty"`
		} `json:"transport,omitempty"`
	} `json:"transporter,omitempty"`
	Destination *struct {
		Operation *struct {
			Signature *Signature `json:"signature,omitempty"`
		} `json:"operation,omitempty"`
	} `json:"destination,omitempty"`
}
