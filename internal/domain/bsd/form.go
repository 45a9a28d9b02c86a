package bsd

// Form is the reconstructed state of a BSDD (hazardous waste tracking form). Its shape is flat:
// one field per column, the way writers emit it.
type Form struct {
	ID         *string `json:"id,omitempty"`
	ReadableID *string `json:"readableId,omitempty"`
	CustomID   *string `json:"customId,omitempty"`
	Status     *string `json:"status,omitempty"`
	IsDeleted  *bool   `json:"isDeleted,omitempty"`

	EmitterType           *string `json:"emitterType,omitempty"`
	EmitterPickupSite     *string `json:"emitterPickupSite,omitempty"`
	EmitterCompanyName    *string `json:"emitterCompanyName,omitempty"`
	EmitterCompanySiret   *string `json:"emitterCompanySiret,omitempty"`
	EmitterCompanyAddress *string `json:"emitterCompanyAddress,omitempty"`
	EmitterCompanyContact *string `json:"emitterCompanyContact,omitempty"`
	EmitterCompanyPhone   *string `json:"emitterCompanyPhone,omitempty"`
	EmitterCompanyMail    *string `json:"emitterCompanyMail,omitempty"`

	EcoOrganismeName  *string `json:"ecoOrganismeName,omitempty"`
	EcoOrganismeSiret *string `json:"ecoOrganismeSiret,omitempty"`

	RecipientCap                 *string `json:"recipientCap,omitempty"`
	RecipientProcessingOperation *string `json:"recipientProcessingOperation,omitempty"`
	RecipientIsTempStorage       *bool   `json:"recipientIsTempStorage,omitempty"`
	RecipientCompanyName         *string `json:"recipientCompanyName,omitempty"`
	RecipientCompanySiret        *string `json:"recipientCompanySiret,omitempty"`
	RecipientCompanyAddress      *string `json:"recipientCompanyAddress,omitempty"`
	RecipientCompanyContact      *string `json:"recipientCompanyContact,omitempty"`
	RecipientCompanyPhone        *string `json:"recipientCompanyPhone,omitempty"`
	RecipientCompanyMail         *string `json:"recipientCompanyMail,omitempty"`

	WasteDetailsCode           *string         `json:"wasteDetailsCode,omitempty"`
	WasteDetailsName           *string         `json:"wasteDetailsName,omitempty"`
	WasteDetailsOnuCode        *string         `json:"wasteDetailsOnuCode,omitempty"`
	WasteDetailsIsDangerous    *bool           `json:"wasteDetailsIsDangerous,omitempty"`
	WasteDetailsPop            *bool           `json:"wasteDetailsPop,omitempty"`
	WasteDetailsConsistence    *string         `json:"wasteDetailsConsistence,omitempty"`
	WasteDetailsQuantity       *float64        `json:"wasteDetailsQuantity,omitempty"`
	WasteDetailsQuantityType   *string         `json:"wasteDetailsQuantityType,omitempty"`
	WasteDetailsPackagingInfos []PackagingInfo `json:"wasteDetailsPackagingInfos,omitempty"`

	TransporterCompanyName    *string `json:"transporterCompanyName,omitempty"`
	TransporterCompanySiret   *string `json:"transporterCompanySiret,omitempty"`
	TransporterCompanyAddress *string `json:"transporterCompanyAddress,omitempty"`
	TransporterCompanyContact *string `json:"transporterCompanyContact,omitempty"`
	TransporterReceipt        *string `json:"transporterReceipt,omitempty"`
	TransporterNumberPlate    *string `json:"transporterNumberPlate,omitempty"`
	TransporterTransportMode  *string `json:"transporterTransportMode,omitempty"`
	TransporterCustomInfo     *string `json:"transporterCustomInfo,omitempty"`

	EmittedAt             *Date   `json:"emittedAt,omitempty"`
	EmittedBy             *string `json:"emittedBy,omitempty"`
	EmittedByEcoOrganisme *bool   `json:"emittedByEcoOrganisme,omitempty"`
	TakenOverAt           *Date   `json:"takenOverAt,omitempty"`
	TakenOverBy           *string `json:"takenOverBy,omitempty"`

	ReceivedAt             *Date    `json:"receivedAt,omitempty"`
	ReceivedBy             *string  `json:"receivedBy,omitempty"`
	SignedAt               *Date    `json:"signedAt,omitempty"`
	QuantityReceived       *float64 `json:"quantityReceived,omitempty"`
	WasteAcceptationStatus *string  `json:"wasteAcceptationStatus,omitempty"`
	WasteRefusalReason     *string  `json:"wasteRefusalReason,omitempty"`

	ProcessedAt                    *Date   `json:"processedAt,omitempty"`
	ProcessedBy                    *string `json:"processedBy,omitempty"`
	ProcessingOperationDone        *string `json:"processingOperationDone,omitempty"`
	ProcessingOperationDescription *string `json:"processingOperationDescription,omitempty"`
	NoTraceability                 *bool   `json:"noTraceability,omitempty"`
}

type PackagingInfo struct {
	Type     string  `json:"type"`
	Other    string  `json:"other,omitempty"`
	Quantity int     `json:"quantity"`
	Volume   float64 `json:"volume,omitempty"`
}

// FormSignature is the part of a form a signature event may write.
type FormSignature struct {
	Status *string `json:"status,omitempty"`

	EmittedAt             *Date   `json:"emittedAt,omitempty"`
	EmittedBy             *string `json:"emittedBy,omitempty"`
	EmittedByEcoOrganisme *bool   `json:"emittedByEcoOrganisme,omitempty"`
	TakenOverAt           *Date   `json:"takenOverAt,omitempty"`
	TakenOverBy           *string `json:"takenOverBy,omitempty"`

	ReceivedAt             *Date    `json:"receivedAt,omitempty"`
	ReceivedBy             *string  `json:"receivedBy,omitempty"`
	SignedAt               *Date    `json:"signedAt,omitempty"`
	QuantityReceived       *float64 `json:"quantityReceived,omitempty"`
	WasteAcceptationStatus *string  `json:"wasteAcceptationStatus,omitempty"`
	WasteRefusalReason     *string  `json:"wasteRefusalReason,omitempty"`

	ProcessedAt                    *Date   `json:"processedAt,omitempty"`
	ProcessedBy                    *string `json:"processedBy,omitempty"`
	ProcessingOperationDone        *string `json:"processingOperationDone,omitempty"`
	ProcessingOperationDescription *string `json:"processingOperationDescription,omitempty"`
	NoTraceability                 *bool   `json:"noTraceability,omitempty"`
}
