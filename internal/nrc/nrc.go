// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package nrc holds the ISO 14229-1 negative response code registry: the
// full enumeration, symbolic-name lookup, and positive/negative
// classification. The lookup-by-value style mirrors
// asdu.CauseOfTransmission.String() in the reference IEC 60870-5-104
// stack, which resolves a numeric cause into a name via a parallel table.
package nrc

import "strconv"

// Code is a Negative Response Code, the third byte of a {0x7F, SID, NRC}
// negative response.
type Code uint8

// The ISO 14229-1 negative response codes. Values outside this set may
// still appear on the wire from a real ECU; Name and IsNegative degrade
// gracefully (decimal string, false) for them.
const (
	PositiveResponse                          Code = 0x00
	GeneralReject                             Code = 0x10
	ServiceNotSupported                       Code = 0x11
	SubFunctionNotSupported                   Code = 0x12
	IncorrectMessageLengthOrInvalidFormat     Code = 0x13
	ResponseTooLong                           Code = 0x14
	BusyRepeatRequest                         Code = 0x21
	ConditionsNotCorrect                      Code = 0x22
	RequestSequenceError                      Code = 0x24
	NoResponseFromSubnetComponent             Code = 0x25
	FailurePreventsExecutionOfRequestedAction Code = 0x26
	RequestOutOfRange                         Code = 0x31
	SecurityAccessDenied                      Code = 0x33
	AuthenticationRequired                    Code = 0x34
	InvalidKey                                Code = 0x35
	ExceedNumberOfAttempts                    Code = 0x36
	RequiredTimeDelayNotExpired                Code = 0x37
	SecureDataTransmissionRequired             Code = 0x38
	SecureDataTransmissionNotAllowed           Code = 0x39
	SecureDataVerificationFailed               Code = 0x3A

	// TerminationWithSignatureRequested through AuditTrailInformationNotAvailable
	// are the ISO 15764 secure-data-transmission codes, defined as offsets
	// from SecureDataTransmissionRequired (0x38). The first three offsets
	// (+0, +1, +2) collide with SecureDataTransmissionRequired,
	// SecureDataTransmissionNotAllowed and SecureDataVerificationFailed
	// above and are not redeclared.
	TerminationWithSignatureRequested Code = 0x3B
	AccessDenied                      Code = 0x3C
	VersionNotSupported               Code = 0x3D
	SecuredLinkNotSupported           Code = 0x3E
	CertificateNotAvailable           Code = 0x3F
	AuditTrailInformationNotAvailable Code = 0x40

	CertificateVerificationFailed_InvalidTimePeriod   Code = 0x50
	CertificateVerificationFailed_InvalidSignature    Code = 0x51
	CertificateVerificationFailed_InvalidChainOfTrust Code = 0x52
	CertificateVerificationFailed_InvalidType         Code = 0x53
	CertificateVerificationFailed_InvalidFormat       Code = 0x54
	CertificateVerificationFailed_InvalidContent      Code = 0x55
	CertificateVerificationFailed_InvalidScope        Code = 0x56
	CertificateVerificationFailed_InvalidCertificate  Code = 0x57
	OwnershipVerificationFailed                       Code = 0x58
	ChallengeCalculationFailed                        Code = 0x59
	SettingAccessRightsFailed                         Code = 0x5A
	SessionKeyCreationDerivationFailed                Code = 0x5B
	ConfigurationDataUsageFailed                      Code = 0x5C
	DeAuthenticationFailed                            Code = 0x5D

	UploadDownloadNotAccepted                Code = 0x70
	TransferDataSuspended                    Code = 0x71
	GeneralProgrammingFailure                Code = 0x72
	WrongBlockSequenceCounter                Code = 0x73
	RequestCorrectlyReceived_ResponsePending Code = 0x78
	SubFunctionNotSupportedInActiveSession   Code = 0x7E
	ServiceNotSupportedInActiveSession       Code = 0x7F

	// RpmTooHigh through VoltageTooLow are the vehicle-condition codes a
	// service may return when a precondition on engine state, speed or
	// electrical load is not met. 0x8E is reserved and intentionally absent.
	RpmTooHigh                    Code = 0x81
	RpmTooLow                     Code = 0x82
	EngineIsRunning               Code = 0x83
	EngineIsNotRunning             Code = 0x84
	EngineRunTimeTooLow           Code = 0x85
	TemperatureTooHigh            Code = 0x86
	TemperatureTooLow             Code = 0x87
	VehicleSpeedTooHigh           Code = 0x88
	VehicleSpeedTooLow            Code = 0x89
	ThrottlePedalTooHigh          Code = 0x8A
	ThrottlePedalTooLow           Code = 0x8B
	TransmissionRangeNotInNeutral Code = 0x8C
	TransmissionRangeNotInGear    Code = 0x8D
	BrakeSwitchNotClosed          Code = 0x8F
	ShifterLeverNotInPark         Code = 0x90
	TorqueConverterClutchLocked   Code = 0x91
	VoltageTooHigh                Code = 0x92
	VoltageTooLow                 Code = 0x93
	ResourceTemporarilyNotAvailable Code = 0x94
)

// names maps every known Code to its symbolic name, used for both Name and
// IsNegative. Built once at init rather than a big switch, so a caller
// iterating the registry (e.g. to render a reference table) can range over
// it directly.
var names = map[Code]string{
	PositiveResponse:                          "PositiveResponse",
	GeneralReject:                             "GeneralReject",
	ServiceNotSupported:                       "ServiceNotSupported",
	SubFunctionNotSupported:                   "SubFunctionNotSupported",
	IncorrectMessageLengthOrInvalidFormat:     "IncorrectMessageLengthOrInvalidFormat",
	ResponseTooLong:                           "ResponseTooLong",
	BusyRepeatRequest:                         "BusyRepeatRequest",
	ConditionsNotCorrect:                      "ConditionsNotCorrect",
	RequestSequenceError:                      "RequestSequenceError",
	NoResponseFromSubnetComponent:             "NoResponseFromSubnetComponent",
	FailurePreventsExecutionOfRequestedAction: "FailurePreventsExecutionOfRequestedAction",
	RequestOutOfRange:                          "RequestOutOfRange",
	SecurityAccessDenied:                       "SecurityAccessDenied",
	AuthenticationRequired:                     "AuthenticationRequired",
	InvalidKey:                                 "InvalidKey",
	ExceedNumberOfAttempts:                     "ExceedNumberOfAttempts",
	RequiredTimeDelayNotExpired:                "RequiredTimeDelayNotExpired",
	SecureDataTransmissionRequired:             "SecureDataTransmissionRequired",
	SecureDataTransmissionNotAllowed:           "SecureDataTransmissionNotAllowed",
	SecureDataVerificationFailed:               "SecureDataVerificationFailed",
	TerminationWithSignatureRequested:         "TerminationWithSignatureRequested",
	AccessDenied:                              "AccessDenied",
	VersionNotSupported:                       "VersionNotSupported",
	SecuredLinkNotSupported:                   "SecuredLinkNotSupported",
	CertificateNotAvailable:                   "CertificateNotAvailable",
	AuditTrailInformationNotAvailable:         "AuditTrailInformationNotAvailable",

	CertificateVerificationFailed_InvalidTimePeriod:   "CertificateVerificationFailed_InvalidTimePeriod",
	CertificateVerificationFailed_InvalidSignature:    "CertificateVerificationFailed_InvalidSignature",
	CertificateVerificationFailed_InvalidChainOfTrust: "CertificateVerificationFailed_InvalidChainOfTrust",
	CertificateVerificationFailed_InvalidType:         "CertificateVerificationFailed_InvalidType",
	CertificateVerificationFailed_InvalidFormat:       "CertificateVerificationFailed_InvalidFormat",
	CertificateVerificationFailed_InvalidContent:      "CertificateVerificationFailed_InvalidContent",
	CertificateVerificationFailed_InvalidScope:        "CertificateVerificationFailed_InvalidScope",
	CertificateVerificationFailed_InvalidCertificate:  "CertificateVerificationFailed_InvalidCertificate",
	OwnershipVerificationFailed:                       "OwnershipVerificationFailed",
	ChallengeCalculationFailed:                        "ChallengeCalculationFailed",
	SettingAccessRightsFailed:                         "SettingAccessRightsFailed",
	SessionKeyCreationDerivationFailed:                "SessionKeyCreationDerivationFailed",
	ConfigurationDataUsageFailed:                      "ConfigurationDataUsageFailed",
	DeAuthenticationFailed:                            "DeAuthenticationFailed",

	UploadDownloadNotAccepted:                "UploadDownloadNotAccepted",
	TransferDataSuspended:                    "TransferDataSuspended",
	GeneralProgrammingFailure:                "GeneralProgrammingFailure",
	WrongBlockSequenceCounter:                "WrongBlockSequenceCounter",
	RequestCorrectlyReceived_ResponsePending: "RequestCorrectlyReceived_ResponsePending",
	SubFunctionNotSupportedInActiveSession:   "SubFunctionNotSupportedInActiveSession",
	ServiceNotSupportedInActiveSession:       "ServiceNotSupportedInActiveSession",

	RpmTooHigh:                    "RpmTooHigh",
	RpmTooLow:                     "RpmTooLow",
	EngineIsRunning:               "EngineIsRunning",
	EngineIsNotRunning:            "EngineIsNotRunning",
	EngineRunTimeTooLow:           "EngineRunTimeTooLow",
	TemperatureTooHigh:            "TemperatureTooHigh",
	TemperatureTooLow:             "TemperatureTooLow",
	VehicleSpeedTooHigh:           "VehicleSpeedTooHigh",
	VehicleSpeedTooLow:            "VehicleSpeedTooLow",
	ThrottlePedalTooHigh:          "ThrottlePedalTooHigh",
	ThrottlePedalTooLow:           "ThrottlePedalTooLow",
	TransmissionRangeNotInNeutral: "TransmissionRangeNotInNeutral",
	TransmissionRangeNotInGear:    "TransmissionRangeNotInGear",
	BrakeSwitchNotClosed:          "BrakeSwitchNotClosed",
	ShifterLeverNotInPark:         "ShifterLeverNotInPark",
	TorqueConverterClutchLocked:   "TorqueConverterClutchLocked",
	VoltageTooHigh:                "VoltageTooHigh",
	VoltageTooLow:                 "VoltageTooLow",
	ResourceTemporarilyNotAvailable: "ResourceTemporarilyNotAvailable",
}

// Name returns the symbolic name for code, or its decimal representation
// if code is not a known NRC.
func Name(code Code) string {
	if s, ok := names[code]; ok {
		return s
	}
	return strconv.Itoa(int(code))
}

// IsNegative reports whether code is a known NRC other than PositiveResponse.
func IsNegative(code Code) bool {
	if code == PositiveResponse {
		return false
	}
	_, ok := names[code]
	return ok
}

// AlwaysValid is the shared set of NRCs any service handler may emit
// regardless of its own supported set.
var AlwaysValid = map[Code]struct{}{
	GeneralReject:                             {},
	ServiceNotSupported:                       {},
	ResponseTooLong:                           {},
	BusyRepeatRequest:                         {},
	NoResponseFromSubnetComponent:             {},
	FailurePreventsExecutionOfRequestedAction: {},
	SecurityAccessDenied:                      {},
	AuthenticationRequired:                    {},
	SecureDataTransmissionRequired:            {},
	SecureDataTransmissionNotAllowed:          {},
	RequestCorrectlyReceived_ResponsePending:  {},
	ServiceNotSupportedInActiveSession:        {},
	ResourceTemporarilyNotAvailable:           {},
}

// IsSupported reports whether code may legally be emitted by a handler
// whose own supported set is `supported`. A code that isn't in either set
// is a programming error, not a protocol outcome, and callers should panic
// rather than put it on the wire.
func IsSupported(code Code, supported map[Code]struct{}) bool {
	if _, ok := AlwaysValid[code]; ok {
		return true
	}
	_, ok := supported[code]
	return ok
}
