/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package version

// License identifies one of the well-known open source licenses a project may
// be distributed under.
type License uint8

const (
	License_MIT License = iota
	License_GNU_GPL_v3
	License_GNU_Affero_GPL_v3
	License_GNU_Lesser_GPL_v3
	License_Mozilla_PL_v2
	License_Apache_v2
	License_Unlicense
	License_Creative_Common_Zero_v1
	License_Creative_Common_Attribution_v4_int
	License_Creative_Common_Attribution_Share_Alike_v4_int
	License_SIL_Open_Font_1_1
)

// Name returns the display name of the license.
func (l License) Name() string {
	switch l {
	case License_MIT:
		return "MIT License"
	case License_GNU_GPL_v3:
		return "GNU GENERAL PUBLIC LICENSE v3"
	case License_GNU_Affero_GPL_v3:
		return "GNU AFFERO GENERAL PUBLIC LICENSE v3"
	case License_GNU_Lesser_GPL_v3:
		return "GNU LESSER GENERAL PUBLIC LICENSE v3"
	case License_Mozilla_PL_v2:
		return "Mozilla Public License 2.0"
	case License_Apache_v2:
		return "Apache License 2.0"
	case License_Unlicense:
		return "Free and unencumbered software"
	case License_Creative_Common_Zero_v1:
		return "Creative Commons Zero v1.0 Universal"
	case License_Creative_Common_Attribution_v4_int:
		return "Creative Commons Attribution 4.0 International"
	case License_Creative_Common_Attribution_Share_Alike_v4_int:
		return "Creative Commons Attribution-ShareAlike 4.0 International"
	case License_SIL_Open_Font_1_1:
		return "SIL Open Font License 1.1"
	}
	return "Unknown License"
}

// Boiler returns the short boilerplate notice customarily embedded at the top
// of a source file for this license.
func (l License) Boiler() string {
	switch l {
	case License_MIT:
		return "MIT License\n\nPermission is hereby granted, free of charge, to any person obtaining a copy\nof this software and associated documentation files, to deal in the Software\nwithout restriction, subject to the inclusion of the above copyright notice\nin all copies or substantial portions of the Software."
	case License_GNU_GPL_v3:
		return "GNU GENERAL PUBLIC LICENSE v3\n\nThis program is free software: you can redistribute it and/or modify it under\nthe terms of the GNU General Public License as published by the Free\nSoftware Foundation, either version 3 of the License, or any later version."
	case License_GNU_Affero_GPL_v3:
		return "GNU AFFERO GENERAL PUBLIC LICENSE v3\n\nThis program is free software: you can redistribute it and/or modify it under\nthe terms of the GNU Affero General Public License as published by the Free\nSoftware Foundation, either version 3 of the License, or any later version."
	case License_GNU_Lesser_GPL_v3:
		return "GNU LESSER GENERAL PUBLIC LICENSE v3\n\nThis library is free software: you can redistribute it and/or modify it under\nthe terms of the GNU Lesser General Public License as published by the Free\nSoftware Foundation, either version 3 of the License, or any later version."
	case License_Mozilla_PL_v2:
		return "Mozilla Public License 2.0\n\nThis Source Code Form is subject to the terms of the Mozilla Public License,\nv. 2.0. If a copy of the MPL was not distributed with this file, You can\nobtain one at https://mozilla.org/MPL/2.0/."
	case License_Apache_v2:
		return "Apache License 2.0\n\nLicensed under the Apache License, Version 2.0 (the \"License\"); you may not\nuse this file except in compliance with the License. You may obtain a copy\nof the License at http://www.apache.org/licenses/LICENSE-2.0."
	case License_Unlicense:
		return "Free and unencumbered software\n\nThis is free and unencumbered software released into the public domain."
	case License_Creative_Common_Zero_v1:
		return "Creative Commons Zero v1.0 Universal\n\nThe person who associated a work with this deed has dedicated the work to\nthe public domain by waiving all of his or her rights to the work worldwide\nunder copyright law."
	case License_Creative_Common_Attribution_v4_int:
		return "Creative Commons Attribution 4.0 International\n\nThis work is licensed under the Creative Commons Attribution 4.0\nInternational License. To view a copy of this license, visit\nhttps://creativecommons.org/licenses/by/4.0/."
	case License_Creative_Common_Attribution_Share_Alike_v4_int:
		return "Creative Commons Attribution-ShareAlike 4.0 International\n\nThis work is licensed under the Creative Commons Attribution-ShareAlike 4.0\nInternational License. To view a copy of this license, visit\nhttps://creativecommons.org/licenses/by-sa/4.0/."
	case License_SIL_Open_Font_1_1:
		return "SIL Open Font License 1.1\n\nThis Font Software is licensed under the SIL Open Font License, Version 1.1.\nThis license is copied below, and is also available with a FAQ at\nhttps://scripts.sil.org/OFL."
	}
	return ""
}

// Legal returns a single-line legal attribution notice for this license.
func (l License) Legal() string {
	return l.Name() + " - see " + l.reference() + " for the full text."
}

// Full returns the boilerplate text; this package does not embed the complete,
// multi-page canonical license text, only its boilerplate and a reference URL.
func (l License) Full() string {
	return l.Boiler() + "\n\nFull text: " + l.reference()
}

func (l License) reference() string {
	switch l {
	case License_MIT:
		return "https://opensource.org/license/mit"
	case License_GNU_GPL_v3:
		return "https://www.gnu.org/licenses/gpl-3.0.html"
	case License_GNU_Affero_GPL_v3:
		return "https://www.gnu.org/licenses/agpl-3.0.html"
	case License_GNU_Lesser_GPL_v3:
		return "https://www.gnu.org/licenses/lgpl-3.0.html"
	case License_Mozilla_PL_v2:
		return "https://www.mozilla.org/en-US/MPL/2.0/"
	case License_Apache_v2:
		return "https://www.apache.org/licenses/LICENSE-2.0"
	case License_Unlicense:
		return "https://unlicense.org/"
	case License_Creative_Common_Zero_v1:
		return "https://creativecommons.org/publicdomain/zero/1.0/"
	case License_Creative_Common_Attribution_v4_int:
		return "https://creativecommons.org/licenses/by/4.0/"
	case License_Creative_Common_Attribution_Share_Alike_v4_int:
		return "https://creativecommons.org/licenses/by-sa/4.0/"
	case License_SIL_Open_Font_1_1:
		return "https://scripts.sil.org/OFL"
	}
	return ""
}
