package errors

func priv(msg string, snap *Snapshot) PrivateError {
	return PrivateError{cl(msg, snap)}
}

func challenge(msg string, snap *Snapshot) ChallengeError {
	return ChallengeError{priv(msg, snap)}
}

func notFound(msg string, snap *Snapshot) NotFoundError {
	if msg == "" {
		msg = "not found"
	}
	return NotFoundError{priv(msg, snap)}
}

func NewConnectionError(msg string, snap *Snapshot) *ClientConnectionError {
	return &ClientConnectionError{cl(msg, snap)}
}

func NewJSONDecodeError(msg string, snap *Snapshot) *ClientJSONDecodeError {
	return &ClientJSONDecodeError{cl(msg, snap)}
}

func NewBadRequest(msg string, snap *Snapshot) *ClientBadRequestError {
	return &ClientBadRequestError{cl(msg, snap)}
}

func NewUnauthorized(msg string, snap *Snapshot) *ClientUnauthorizedError {
	return &ClientUnauthorizedError{cl(msg, snap)}
}

func NewForbidden(msg string, snap *Snapshot) *ClientForbiddenError {
	return &ClientForbiddenError{cl(msg, snap)}
}

func NewNotFound(msg string, snap *Snapshot) *ClientNotFoundError {
	return &ClientNotFoundError{cl(msg, snap)}
}

func NewThrottled(msg string, snap *Snapshot) *ClientThrottledError {
	return &ClientThrottledError{cl(msg, snap)}
}

func NewRequestTimeout(msg string, snap *Snapshot) *ClientRequestTimeout {
	return &ClientRequestTimeout{cl(msg, snap)}
}

func NewUnknown(msg string, snap *Snapshot) *ClientUnknownError {
	return &ClientUnknownError{cl(msg, snap)}
}

func NewStatusFail(msg string, snap *Snapshot) *ClientStatusFail {
	return &ClientStatusFail{cl(msg, snap)}
}

func NewErrorWithTitle(msg string, snap *Snapshot) *ClientErrorWithTitle {
	return &ClientErrorWithTitle{cl(msg, snap)}
}

func NewGraphqlError(msg string, snap *Snapshot) *ClientGraphqlError {
	return &ClientGraphqlError{cl(msg, snap)}
}

func NewWebLoginRequired(msg string, snap *Snapshot) *ClientLoginRequired {
	return &ClientLoginRequired{cl(msg, snap)}
}

func NewAccountSuspended(msg string, snap *Snapshot) *AccountSuspended {
	return &AccountSuspended{cl(msg, snap)}
}

func NewTermsUnblock(msg string, snap *Snapshot) *TermsUnblock {
	return &TermsUnblock{cl(msg, snap)}
}

func NewTermsAccept(msg string, snap *Snapshot) *TermsAccept {
	return &TermsAccept{cl(msg, snap)}
}

func NewAboutUsError(msg string, snap *Snapshot) *AboutUsError {
	return &AboutUsError{cl(msg, snap)}
}

func NewReloginAttemptExceeded() *ReloginAttemptExceeded {
	return &ReloginAttemptExceeded{cl("relogin attempt exceeded", nil)}
}

func NewPreLoginRequired() *PreLoginRequired {
	return &PreLoginRequired{cl("login required", nil)}
}

func NewBadCredentials(msg string) *BadCredentials {
	return &BadCredentials{cl(msg, nil)}
}

func NewRetriesConfigError(msg string) *RetriesConfigError {
	return &RetriesConfigError{cl(msg, nil)}
}

func NewConnectProxyError(msg string, snap *Snapshot) *ConnectProxyError {
	return &ConnectProxyError{ProxyError{cl(msg, snap)}}
}

func NewAuthRequiredProxyError(msg string, snap *Snapshot) *AuthRequiredProxyError {
	return &AuthRequiredProxyError{ProxyError{cl(msg, snap)}}
}

func NewLoginRequired(msg string, snap *Snapshot) *LoginRequired {
	if msg == "" {
		msg = "login_required"
	}
	return &LoginRequired{priv(msg, snap)}
}

func NewFeedbackRequired(msg string, snap *Snapshot) *FeedbackRequired {
	return &FeedbackRequired{priv(msg, snap)}
}

func NewConsentRequired(msg string, snap *Snapshot) *ConsentRequired {
	return &ConsentRequired{priv(msg, snap)}
}

func NewGeoBlockRequired(msg string, snap *Snapshot) *GeoBlockRequired {
	return &GeoBlockRequired{priv(msg, snap)}
}

func NewCheckpointRequired(msg string, snap *Snapshot) *CheckpointRequired {
	return &CheckpointRequired{priv(msg, snap)}
}

func NewSentryBlock(msg string, snap *Snapshot) *SentryBlock {
	return &SentryBlock{priv(msg, snap)}
}

func NewRateLimitError(msg string, snap *Snapshot) *RateLimitError {
	return &RateLimitError{priv(msg, snap)}
}

func NewBadPassword(msg string, snap *Snapshot) *BadPassword {
	return &BadPassword{priv(msg, snap)}
}

func NewTwoFactorRequired(msg string, snap *Snapshot, identifier string) *TwoFactorRequired {
	if msg == "" {
		msg = "Two-factor authentication required"
	}
	return &TwoFactorRequired{PrivateError: priv(msg, snap), TwoFactorIdentifier: identifier}
}

func NewPleaseWaitFewMinutes(msg string, snap *Snapshot) *PleaseWaitFewMinutes {
	return &PleaseWaitFewMinutes{priv(msg, snap)}
}

func NewVideoTooLong(msg string, snap *Snapshot) *VideoTooLongError {
	return &VideoTooLongError{priv(msg, snap)}
}

func NewPrivateAccount(msg string, snap *Snapshot) *PrivateAccount {
	return &PrivateAccount{priv(msg, snap)}
}

func NewInvalidTargetUser(msg string, snap *Snapshot) *InvalidTargetUser {
	return &InvalidTargetUser{priv(msg, snap)}
}

func NewInvalidMediaID(msg string, snap *Snapshot) *InvalidMediaID {
	return &InvalidMediaID{priv(msg, snap)}
}

func NewMediaUnavailable(msg string, snap *Snapshot) *MediaUnavailable {
	return &MediaUnavailable{priv(msg, snap)}
}

// NewProxyAddressIsBlocked replaces the server's misleading username-not-found
// phrasing with the actual condition.
func NewProxyAddressIsBlocked(snap *Snapshot) *ProxyAddressIsBlocked {
	msg := "Instagram has blocked your IP address, " +
		"use a quality proxy provider (not free, not shared)"
	return &ProxyAddressIsBlocked{priv(msg, snap)}
}

func NewUnknownError(msg string, snap *Snapshot) *UnknownError {
	return &UnknownError{priv(msg, snap)}
}

func NewCommentsDisabled(msg string, snap *Snapshot) *CommentsDisabled {
	if msg == "" {
		msg = "comments disabled by author"
	}
	return &CommentsDisabled{priv(msg, snap)}
}

func NewHashtagPageWarning(msg string, snap *Snapshot) *HashtagPageWarning {
	return &HashtagPageWarning{priv(msg, snap)}
}

func NewChallengeRequired(msg string, snap *Snapshot) *ChallengeRequired {
	if msg == "" {
		msg = "challenge_required"
	}
	return &ChallengeRequired{challenge(msg, snap)}
}

func NewChallengeSelfieCaptcha(msg string, snap *Snapshot) *ChallengeSelfieCaptcha {
	return &ChallengeSelfieCaptcha{challenge(msg, snap)}
}

func NewChallengeUnknownStep(msg string, snap *Snapshot) *ChallengeUnknownStep {
	return &ChallengeUnknownStep{challenge(msg, snap)}
}

func NewRecaptchaChallengeForm(msg string, snap *Snapshot) *RecaptchaChallengeForm {
	return &RecaptchaChallengeForm{challenge(msg, snap)}
}

func NewUserNotFound(msg string, snap *Snapshot) *UserNotFound {
	return &UserNotFound{notFound(msg, snap)}
}

func NewMediaNotFound(msg string, snap *Snapshot) *MediaNotFound {
	return &MediaNotFound{notFound(msg, snap)}
}

func NewStoryNotFound(msg string, snap *Snapshot) *StoryNotFound {
	return &StoryNotFound{notFound(msg, snap)}
}

func NewCollectionNotFound(msg string, snap *Snapshot) *CollectionNotFound {
	return &CollectionNotFound{notFound(msg, snap)}
}

func NewHashtagNotFound(msg string, snap *Snapshot) *HashtagNotFound {
	return &HashtagNotFound{notFound(msg, snap)}
}

func NewLocationNotFound(msg string, snap *Snapshot) *LocationNotFound {
	return &LocationNotFound{notFound(msg, snap)}
}

func NewDirectThreadNotFound(msg string, snap *Snapshot) *DirectThreadNotFound {
	return &DirectThreadNotFound{notFound(msg, snap)}
}

func NewDirectMessageNotFound(msg string, snap *Snapshot) *DirectMessageNotFound {
	return &DirectMessageNotFound{notFound(msg, snap)}
}

func NewHighlightNotFound(msg string, snap *Snapshot) *HighlightNotFound {
	return &HighlightNotFound{notFound(msg, snap)}
}

func NewTrackNotFound(msg string, snap *Snapshot) *TrackNotFound {
	return &TrackNotFound{notFound(msg, snap)}
}
