package engine

import "errors"

var ErrUnsupportedVariant = errors.New("unsupported variant")
var ErrInvalidSeats = errors.New("invalid seat order")

var ErrNotYourTurn = errors.New("not your turn")
var ErrAlreadyPassed = errors.New("already passed")
var ErrBidTooLow = errors.New("bid too low")
var ErrBidTooHigh = errors.New("bid too high")
var ErrBidNotMultipleOfIncrement = errors.New("bid not a multiple of the increment")
var ErrBiddingComplete = errors.New("bidding complete")

var ErrNotLeader = errors.New("only the leader may do that")
var ErrInvalidSuit = errors.New("invalid suit")
var ErrTrumpAlreadySelected = errors.New("trump already selected")
var ErrTrumpNotSelected = errors.New("trump not selected")
var ErrPartnerCount = errors.New("wrong number of partner cards")
var ErrInvalidCard = errors.New("invalid card")
var ErrPartnerCardInHand = errors.New("partner card is in the leader's hand")
var ErrPartnerCardBothCopies = errors.New("leader holds both copies of the partner card")
var ErrDisambiguationRequired = errors.New("partner card needs 1st or 2nd")
var ErrDisambiguationNotAllowed = errors.New("partner card does not take 1st or 2nd")
var ErrDuplicatePartnerCard = errors.New("partner card chosen twice")
var ErrPartnerCardNotInPlay = errors.New("partner card is not in play")

var ErrCardNotInHand = errors.New("card not in hand")
var ErrMustFollowSuit = errors.New("must follow suit")

var ErrWrongPhase = errors.New("action not allowed in this phase")
var ErrUnknownPlayer = errors.New("player not seated in this session")
var ErrAlreadyReady = errors.New("already ready for the next round")
var ErrUnsupportedCommand = errors.New("unsupported command")

type ErrorKind string

const (
	KindTurnOrder     ErrorKind = "turn_order"
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindConfiguration ErrorKind = "configuration"
	KindInternal      ErrorKind = "internal"
)

var errorKinds = map[ErrorKind][]error{
	KindTurnOrder:     {ErrNotYourTurn, ErrAlreadyPassed, ErrBiddingComplete, ErrTrumpNotSelected, ErrAlreadyReady},
	KindAuthorization: {ErrNotLeader, ErrUnknownPlayer},
	KindConfiguration: {ErrUnsupportedVariant, ErrInvalidSeats},
	KindValidation: {
		ErrWrongPhase, ErrBidTooLow, ErrBidTooHigh, ErrBidNotMultipleOfIncrement,
		ErrInvalidSuit, ErrTrumpAlreadySelected, ErrPartnerCount, ErrInvalidCard,
		ErrPartnerCardInHand, ErrPartnerCardBothCopies, ErrDisambiguationRequired,
		ErrDisambiguationNotAllowed, ErrDuplicatePartnerCard, ErrPartnerCardNotInPlay,
		ErrCardNotInHand, ErrMustFollowSuit, ErrUnsupportedCommand,
	},
}

// Classify maps a rejection to the category reported to the acting player.
func Classify(err error) ErrorKind {
	for kind, targets := range errorKinds {
		for _, target := range targets {
			if errors.Is(err, target) {
				return kind
			}
		}
	}
	return KindInternal
}
