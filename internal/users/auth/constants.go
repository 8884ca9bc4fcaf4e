// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// ActivationTokenTTL is the window a registrant has to enter the emailed
	// activation code. Short-lived (5m) because the token embeds the
	// candidate's credentials.
	ActivationTokenTTL = 5 * time.Minute

	// ActivationEmailSubject is the subject line of the activation mail.
	ActivationEmailSubject = "Activate your Lurnia account"

	// ActivationEmailTemplate is the embedded template used for the mail body.
	ActivationEmailTemplate = "activation.html"

	// AvatarFolder is the object-storage folder for profile pictures.
	AvatarFolder = "avatars"

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6

	// MaxAvatarBytes caps decoded avatar uploads at 2 MiB.
	MaxAvatarBytes = 2 << 20
)
