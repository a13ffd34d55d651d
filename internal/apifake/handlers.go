package apifake

import (
	"encoding/json"
	"net/http"
	"path"

	"golang.org/x/crypto/bcrypt"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Password2 string `json:"password2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	if body.Username == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"This field is required."}})
		return
	}
	if body.Password2 != "" && body.Password2 != body.Password {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"password": {"Password fields didn't match."}})
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exists := s.users[body.Username]; exists {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"A user with that username already exists."}})
		return
	}
	u, err := s.createUser(body.Username, body.Email, body.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := map[string]any{"user": u, "message": "User registered successfully"}
	if !s.requireVerification {
		tokens, err := s.issueTokens(u)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp["tokens"] = tokens
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	u, ok := s.users[body.Username]
	if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(body.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}
	tokens, err := s.issueTokens(u)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "tokens": tokens, "message": "Login successful"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, u *user) {
	if s.failLogout {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unavailable"})
		return
	}

	var body struct {
		RefreshToken *string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if body.RefreshToken != nil {
		owner, ok := s.refresh[*body.RefreshToken]
		if !ok || owner != u.ID || s.blacklisted[*body.RefreshToken] {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid token"})
			return
		}
		s.blacklisted[*body.RefreshToken] = true
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, u *user) {
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, u *user) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	for k, v := range body {
		switch k {
		case "email":
			u.Email = v
		case "first_name":
			u.FirstName = v
		case "last_name":
			u.LastName = v
		case "phone":
			u.Profile.Phone = v
		case "address":
			u.Profile.Address = v
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "message": "Profile updated successfully"})
}

func (s *Server) handleUploadPicture(w http.ResponseWriter, r *http.Request, u *user) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No image file provided"})
		return
	}
	_, header, err := r.FormFile("profile_picture")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No image file provided"})
		return
	}

	u.Profile.ProfilePicture = "/media/profile_pictures/" + path.Base(header.Filename)
	for field, dst := range map[string]*string{
		"phone":    &u.Profile.Phone,
		"address":  &u.Profile.Address,
		"birthday": &u.Profile.Birthday,
		"gender":   &u.Profile.Gender,
	} {
		if v := r.FormValue(field); v != "" {
			*dst = v
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "message": "Profile picture uploaded successfully"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, u *user) {
	var body struct {
		OldPassword  string `json:"old_password"`
		NewPassword  string `json:"new_password"`
		NewPassword2 string `json:"new_password2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewPassword == "" || body.NewPassword != body.NewPassword2 {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"new_password": {"Password fields didn't match."}})
		return
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(body.OldPassword)) != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Old password is incorrect"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.MinCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	u.passwordHash = hash
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (s *Server) handleHotels(w http.ResponseWriter, r *http.Request) {
	hotels := []map[string]any{
		{"id": 1, "name": "Riverside Inn", "city": "Hanoi"},
		{"id": 2, "name": "Summit Lodge", "city": "Sapa"},
	}
	if city := r.URL.Query().Get("city"); city != "" {
		filtered := hotels[:0]
		for _, h := range hotels {
			if h["city"] == city {
				filtered = append(filtered, h)
			}
		}
		hotels = filtered
	}
	writeJSON(w, http.StatusOK, hotels)
}

func (s *Server) handleTourBooking(w http.ResponseWriter, r *http.Request, u *user) {
	var booking map[string]any
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	booking["id"] = 1
	booking["user"] = u.ID
	booking["status"] = "pending"
	writeJSON(w, http.StatusCreated, booking)
}
