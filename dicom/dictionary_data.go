package dicom

// Subset of the DICOM data dictionary (PS3.6) covering file meta information,
// the identifying attributes of the basic de-identification profile (PS3.15
// E.1-1) and the image/ultrasound modules needed to reason about pixel data.
//
// Columns: tag, VR, keyword, VM, human readable name.
const dicomDictData = `# tag	VR	Keyword	VM	Name
(0002,0000)	UL	FileMetaInformationGroupLength	1	File Meta Information Group Length
(0002,0001)	OB	FileMetaInformationVersion	1	File Meta Information Version
(0002,0002)	UI	MediaStorageSOPClassUID	1	Media Storage SOP Class UID
(0002,0003)	UI	MediaStorageSOPInstanceUID	1	Media Storage SOP Instance UID
(0002,0010)	UI	TransferSyntaxUID	1	Transfer Syntax UID
(0002,0012)	UI	ImplementationClassUID	1	Implementation Class UID
(0002,0013)	SH	ImplementationVersionName	1	Implementation Version Name
(0002,0016)	AE	SourceApplicationEntityTitle	1	Source Application Entity Title
(0002,0100)	UI	PrivateInformationCreatorUID	1	Private Information Creator UID
(0002,0102)	OB	PrivateInformation	1	Private Information
(0004,1130)	CS	FileSetID	1	File-set ID
(0004,1200)	UL	OffsetOfTheFirstDirectoryRecordOfTheRootDirectoryEntity	1	Offset of the First Directory Record of the Root Directory Entity
(0004,1220)	SQ	DirectoryRecordSequence	1	Directory Record Sequence
(0004,1430)	CS	DirectoryRecordType	1	Directory Record Type
(0004,1500)	CS	ReferencedFileID	1-8	Referenced File ID
(0004,1510)	UI	ReferencedSOPClassUIDInFile	1	Referenced SOP Class UID in File
(0004,1511)	UI	ReferencedSOPInstanceUIDInFile	1	Referenced SOP Instance UID in File
(0008,0005)	CS	SpecificCharacterSet	1-n	Specific Character Set
(0008,0008)	CS	ImageType	2-n	Image Type
(0008,0012)	DA	InstanceCreationDate	1	Instance Creation Date
(0008,0013)	TM	InstanceCreationTime	1	Instance Creation Time
(0008,0014)	UI	InstanceCreatorUID	1	Instance Creator UID
(0008,0016)	UI	SOPClassUID	1	SOP Class UID
(0008,0018)	UI	SOPInstanceUID	1	SOP Instance UID
(0008,0020)	DA	StudyDate	1	Study Date
(0008,0021)	DA	SeriesDate	1	Series Date
(0008,0022)	DA	AcquisitionDate	1	Acquisition Date
(0008,0023)	DA	ContentDate	1	Content Date
(0008,002A)	DT	AcquisitionDateTime	1	Acquisition DateTime
(0008,0030)	TM	StudyTime	1	Study Time
(0008,0031)	TM	SeriesTime	1	Series Time
(0008,0032)	TM	AcquisitionTime	1	Acquisition Time
(0008,0033)	TM	ContentTime	1	Content Time
(0008,0050)	SH	AccessionNumber	1	Accession Number
(0008,0060)	CS	Modality	1	Modality
(0008,0064)	CS	ConversionType	1	Conversion Type
(0008,0068)	CS	PresentationIntentType	1	Presentation Intent Type
(0008,0070)	LO	Manufacturer	1	Manufacturer
(0008,0080)	LO	InstitutionName	1	Institution Name
(0008,0081)	ST	InstitutionAddress	1	Institution Address
(0008,0090)	PN	ReferringPhysicianName	1	Referring Physician's Name
(0008,0092)	ST	ReferringPhysicianAddress	1	Referring Physician's Address
(0008,0094)	SH	ReferringPhysicianTelephoneNumbers	1-n	Referring Physician's Telephone Numbers
(0008,0096)	SQ	ReferringPhysicianIdentificationSequence	1	Referring Physician Identification Sequence
(0008,0100)	SH	CodeValue	1	Code Value
(0008,0102)	SH	CodingSchemeDesignator	1	Coding Scheme Designator
(0008,0104)	LO	CodeMeaning	1	Code Meaning
(0008,0201)	SH	TimezoneOffsetFromUTC	1	Timezone Offset From UTC
(0008,1010)	SH	StationName	1	Station Name
(0008,1030)	LO	StudyDescription	1	Study Description
(0008,1032)	SQ	ProcedureCodeSequence	1	Procedure Code Sequence
(0008,103E)	LO	SeriesDescription	1	Series Description
(0008,1040)	LO	InstitutionalDepartmentName	1	Institutional Department Name
(0008,1048)	PN	PhysiciansOfRecord	1-n	Physician(s) of Record
(0008,1050)	PN	PerformingPhysicianName	1-n	Performing Physician's Name
(0008,1060)	PN	NameOfPhysiciansReadingStudy	1-n	Name of Physician(s) Reading Study
(0008,1070)	PN	OperatorsName	1-n	Operators' Name
(0008,1080)	LO	AdmittingDiagnosesDescription	1-n	Admitting Diagnoses Description
(0008,1090)	LO	ManufacturerModelName	1	Manufacturer's Model Name
(0008,1110)	SQ	ReferencedStudySequence	1	Referenced Study Sequence
(0008,1111)	SQ	ReferencedPerformedProcedureStepSequence	1	Referenced Performed Procedure Step Sequence
(0008,1115)	SQ	ReferencedSeriesSequence	1	Referenced Series Sequence
(0008,1120)	SQ	ReferencedPatientSequence	1	Referenced Patient Sequence
(0008,1140)	SQ	ReferencedImageSequence	1	Referenced Image Sequence
(0008,1150)	UI	ReferencedSOPClassUID	1	Referenced SOP Class UID
(0008,1155)	UI	ReferencedSOPInstanceUID	1	Referenced SOP Instance UID
(0008,1195)	UI	TransactionUID	1	Transaction UID
(0008,2111)	ST	DerivationDescription	1	Derivation Description
(0008,2112)	SQ	SourceImageSequence	1	Source Image Sequence
(0008,4000)	LT	IdentifyingComments	1	Identifying Comments
(0010,0010)	PN	PatientName	1	Patient's Name
(0010,0020)	LO	PatientID	1	Patient ID
(0010,0021)	LO	IssuerOfPatientID	1	Issuer of Patient ID
(0010,0030)	DA	PatientBirthDate	1	Patient's Birth Date
(0010,0032)	TM	PatientBirthTime	1	Patient's Birth Time
(0010,0040)	CS	PatientSex	1	Patient's Sex
(0010,0050)	SQ	PatientInsurancePlanCodeSequence	1	Patient's Insurance Plan Code Sequence
(0010,1000)	LO	OtherPatientIDs	1-n	Other Patient IDs
(0010,1001)	PN	OtherPatientNames	1-n	Other Patient Names
(0010,1002)	SQ	OtherPatientIDsSequence	1	Other Patient IDs Sequence
(0010,1005)	PN	PatientBirthName	1	Patient's Birth Name
(0010,1010)	AS	PatientAge	1	Patient's Age
(0010,1020)	DS	PatientSize	1	Patient's Size
(0010,1030)	DS	PatientWeight	1	Patient's Weight
(0010,1040)	LO	PatientAddress	1	Patient's Address
(0010,1060)	PN	PatientMotherBirthName	1	Patient's Mother's Birth Name
(0010,1080)	LO	MilitaryRank	1	Military Rank
(0010,1081)	LO	BranchOfService	1	Branch of Service
(0010,1090)	LO	MedicalRecordLocator	1	Medical Record Locator
(0010,2000)	LO	MedicalAlerts	1-n	Medical Alerts
(0010,2110)	LO	Allergies	1-n	Allergies
(0010,2150)	LO	CountryOfResidence	1	Country of Residence
(0010,2152)	LO	RegionOfResidence	1	Region of Residence
(0010,2154)	SH	PatientTelephoneNumbers	1-n	Patient's Telephone Numbers
(0010,2160)	SH	EthnicGroup	1	Ethnic Group
(0010,2180)	SH	Occupation	1	Occupation
(0010,21A0)	CS	SmokingStatus	1	Smoking Status
(0010,21B0)	LT	AdditionalPatientHistory	1	Additional Patient History
(0010,21C0)	US	PregnancyStatus	1	Pregnancy Status
(0010,21D0)	DA	LastMenstrualDate	1	Last Menstrual Date
(0010,21F0)	LO	PatientReligiousPreference	1	Patient's Religious Preference
(0010,4000)	LT	PatientComments	1	Patient Comments
(0012,0062)	CS	PatientIdentityRemoved	1	Patient Identity Removed
(0012,0063)	LO	DeidentificationMethod	1-n	De-identification Method
(0012,0064)	SQ	DeidentificationMethodCodeSequence	1	De-identification Method Code Sequence
(0018,0010)	LO	ContrastBolusAgent	1	Contrast/Bolus Agent
(0018,0015)	CS	BodyPartExamined	1	Body Part Examined
(0018,0050)	DS	SliceThickness	1	Slice Thickness
(0018,0060)	DS	KVP	1	KVP
(0018,0088)	DS	SpacingBetweenSlices	1	Spacing Between Slices
(0018,1000)	LO	DeviceSerialNumber	1	Device Serial Number
(0018,1002)	UI	DeviceUID	1	Device UID
(0018,1004)	LO	PlateID	1	Plate ID
(0018,1005)	LO	GeneratorID	1	Generator ID
(0018,1007)	LO	CassetteID	1	Cassette ID
(0018,1008)	LO	GantryID	1	Gantry ID
(0018,1012)	DA	DateOfSecondaryCapture	1	Date of Secondary Capture
(0018,1014)	TM	TimeOfSecondaryCapture	1	Time of Secondary Capture
(0018,1016)	LO	SecondaryCaptureDeviceManufacturer	1	Secondary Capture Device Manufacturer
(0018,1020)	LO	SoftwareVersions	1-n	Software Versions
(0018,1030)	LO	ProtocolName	1	Protocol Name
(0018,1200)	DA	DateOfLastCalibration	1-n	Date of Last Calibration
(0018,1201)	TM	TimeOfLastCalibration	1-n	Time of Last Calibration
(0018,5100)	CS	PatientPosition	1	Patient Position
(0018,6011)	SQ	SequenceOfUltrasoundRegions	1	Sequence of Ultrasound Regions
(0018,6012)	US	RegionSpatialFormat	1	Region Spatial Format
(0018,6014)	US	RegionDataType	1	Region Data Type
(0018,6016)	UL	RegionFlags	1	Region Flags
(0018,6018)	UL	RegionLocationMinX0	1	Region Location Min X0
(0018,601A)	UL	RegionLocationMinY0	1	Region Location Min Y0
(0018,601C)	UL	RegionLocationMaxX1	1	Region Location Max X1
(0018,601E)	UL	RegionLocationMaxY1	1	Region Location Max Y1
(0018,9185)	ST	RespiratoryMotionCompensationTechniqueDescription	1	Respiratory Motion Compensation Technique Description
(0018,9424)	LT	AcquisitionProtocolDescription	1	Acquisition Protocol Description
(0018,A003)	ST	ContributionDescription	1	Contribution Description
(0020,000D)	UI	StudyInstanceUID	1	Study Instance UID
(0020,000E)	UI	SeriesInstanceUID	1	Series Instance UID
(0020,0010)	SH	StudyID	1	Study ID
(0020,0011)	IS	SeriesNumber	1	Series Number
(0020,0012)	IS	AcquisitionNumber	1	Acquisition Number
(0020,0013)	IS	InstanceNumber	1	Instance Number
(0020,0020)	CS	PatientOrientation	2	Patient Orientation
(0020,0032)	DS	ImagePositionPatient	3	Image Position (Patient)
(0020,0037)	DS	ImageOrientationPatient	6	Image Orientation (Patient)
(0020,0052)	UI	FrameOfReferenceUID	1	Frame of Reference UID
(0020,0200)	UI	SynchronizationFrameOfReferenceUID	1	Synchronization Frame of Reference UID
(0020,4000)	LT	ImageComments	1	Image Comments
(0020,9161)	UI	ConcatenationUID	1	Concatenation UID
(0028,0002)	US	SamplesPerPixel	1	Samples per Pixel
(0028,0004)	CS	PhotometricInterpretation	1	Photometric Interpretation
(0028,0006)	US	PlanarConfiguration	1	Planar Configuration
(0028,0008)	IS	NumberOfFrames	1	Number of Frames
(0028,0010)	US	Rows	1	Rows
(0028,0011)	US	Columns	1	Columns
(0028,0030)	DS	PixelSpacing	2	Pixel Spacing
(0028,0100)	US	BitsAllocated	1	Bits Allocated
(0028,0101)	US	BitsStored	1	Bits Stored
(0028,0102)	US	HighBit	1	High Bit
(0028,0103)	US	PixelRepresentation	1	Pixel Representation
(0028,0106)	US	SmallestImagePixelValue	1	Smallest Image Pixel Value
(0028,0107)	US	LargestImagePixelValue	1	Largest Image Pixel Value
(0028,0301)	CS	BurnedInAnnotation	1	Burned In Annotation
(0028,0302)	CS	RecognizableVisualFeatures	1	Recognizable Visual Features
(0028,1050)	DS	WindowCenter	1-n	Window Center
(0028,1051)	DS	WindowWidth	1-n	Window Width
(0028,1052)	DS	RescaleIntercept	1	Rescale Intercept
(0028,1053)	DS	RescaleSlope	1	Rescale Slope
(0028,2110)	CS	LossyImageCompression	1	Lossy Image Compression
(0032,000A)	CS	StudyStatusID	1	Study Status ID
(0032,0012)	LO	StudyIDIssuer	1	Study ID Issuer
(0032,1020)	LO	ScheduledStudyLocation	1	Scheduled Study Location
(0032,1021)	AE	ScheduledStudyLocationAETitle	1-n	Scheduled Study Location AE Title
(0032,1030)	LO	ReasonForStudy	1	Reason for Study
(0032,1032)	PN	RequestingPhysician	1	Requesting Physician
(0032,1033)	LO	RequestingService	1	Requesting Service
(0032,1060)	LO	RequestedProcedureDescription	1	Requested Procedure Description
(0032,1070)	LO	RequestedContrastAgent	1	Requested Contrast Agent
(0032,4000)	LT	StudyComments	1	Study Comments
(0038,0010)	LO	AdmissionID	1	Admission ID
(0038,0300)	LO	CurrentPatientLocation	1	Current Patient Location
(0038,0400)	LO	PatientInstitutionResidence	1	Patient's Institution Residence
(0038,0500)	LO	PatientState	1	Patient State
(0040,0001)	AE	ScheduledStationAETitle	1-n	Scheduled Station AE Title
(0040,0002)	DA	ScheduledProcedureStepStartDate	1	Scheduled Procedure Step Start Date
(0040,0003)	TM	ScheduledProcedureStepStartTime	1	Scheduled Procedure Step Start Time
(0040,0006)	PN	ScheduledPerformingPhysicianName	1	Scheduled Performing Physician's Name
(0040,0007)	LO	ScheduledProcedureStepDescription	1	Scheduled Procedure Step Description
(0040,0009)	SH	ScheduledProcedureStepID	1	Scheduled Procedure Step ID
(0040,0010)	SH	ScheduledStationName	1-n	Scheduled Station Name
(0040,0011)	SH	ScheduledProcedureStepLocation	1	Scheduled Procedure Step Location
(0040,0100)	SQ	ScheduledProcedureStepSequence	1	Scheduled Procedure Step Sequence
(0040,0241)	AE	PerformedStationAETitle	1	Performed Station AE Title
(0040,0242)	SH	PerformedStationName	1	Performed Station Name
(0040,0243)	SH	PerformedLocation	1	Performed Location
(0040,0244)	DA	PerformedProcedureStepStartDate	1	Performed Procedure Step Start Date
(0040,0245)	TM	PerformedProcedureStepStartTime	1	Performed Procedure Step Start Time
(0040,0250)	DA	PerformedProcedureStepEndDate	1	Performed Procedure Step End Date
(0040,0251)	TM	PerformedProcedureStepEndTime	1	Performed Procedure Step End Time
(0040,0253)	SH	PerformedProcedureStepID	1	Performed Procedure Step ID
(0040,0254)	LO	PerformedProcedureStepDescription	1	Performed Procedure Step Description
(0040,0275)	SQ	RequestAttributesSequence	1	Request Attributes Sequence
(0040,0280)	ST	CommentsOnThePerformedProcedureStep	1	Comments on the Performed Procedure Step
(0040,1001)	SH	RequestedProcedureID	1	Requested Procedure ID
(0040,1004)	LO	PatientTransportArrangements	1	Patient Transport Arrangements
(0040,1005)	LO	RequestedProcedureLocation	1	Requested Procedure Location
(0040,1010)	PN	NamesOfIntendedRecipientsOfResults	1-n	Names of Intended Recipients of Results
(0040,1400)	LT	RequestedProcedureComments	1	Requested Procedure Comments
(0040,2001)	LO	ReasonForTheImagingServiceRequest	1	Reason for the Imaging Service Request
(0040,2016)	LO	PlacerOrderNumberImagingServiceRequest	1	Placer Order Number / Imaging Service Request
(0040,2017)	LO	FillerOrderNumberImagingServiceRequest	1	Filler Order Number / Imaging Service Request
(0040,2400)	LT	ImagingServiceRequestComments	1	Imaging Service Request Comments
(0040,A073)	SQ	VerifyingObserverSequence	1	Verifying Observer Sequence
(0040,A075)	PN	VerifyingObserverName	1	Verifying Observer Name
(0040,A123)	PN	PersonName	1	Person Name
(0040,A124)	UI	UID	1	UID
(0040,A730)	SQ	ContentSequence	1	Content Sequence
(0040,DB0C)	UI	TemplateExtensionOrganizationUID	1	Template Extension Organization UID
(0070,0084)	PN	ContentCreatorName	1	Content Creator's Name
(0088,0140)	UI	StorageMediaFileSetUID	1	Storage Media File-set UID
(0400,0100)	UI	DigitalSignatureUID	1	Digital Signature UID
(0400,0561)	SQ	OriginalAttributesSequence	1	Original Attributes Sequence
(2030,0020)	LO	TextString	1	Text String
(3006,0024)	UI	ReferencedFrameOfReferenceUID	1	Referenced Frame of Reference UID
(3006,00C2)	UI	RelatedFrameOfReferenceUID	1	Related Frame of Reference UID
(300A,0013)	UI	DoseReferenceUID	1	Dose Reference UID
(4000,0010)	LT	Arbitrary	1	Arbitrary
(4000,4000)	LT	TextComments	1	Text Comments
(4008,0114)	PN	PhysicianApprovingInterpretation	1	Physician Approving Interpretation
(7FE0,0010)	OW	PixelData	1	Pixel Data
(FFFE,E000)	NA	Item	1	Item
(FFFE,E00D)	NA	ItemDelimitationItem	1	Item Delimitation Item
(FFFE,E0DD)	NA	SequenceDelimitationItem	1	Sequence Delimitation Item
`
